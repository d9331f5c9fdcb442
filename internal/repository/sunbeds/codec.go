package sunbeds

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/sunbed-manager/internal/domain/sunbed"
)

// FormatVersion is the version written into every data document.
const FormatVersion = 1

// document is the on-disk shape of the collection.
type document struct {
	// Version identifies the document layout.
	Version int `yaml:"version" toml:"version" validate:"gte=1"`
	// SunBeds holds one record per bed in collection order.
	SunBeds []record `yaml:"sun_beds" toml:"sun_beds" validate:"unique=ID,dive"`
}

// record is the on-disk shape of a single bed.
type record struct {
	// ID is the immutable bed identifier.
	ID int `yaml:"id" toml:"id" validate:"gt=0"`
	// Booked is the occupancy flag.
	Booked bool `yaml:"booked" toml:"booked"`
}

// Codec encodes and decodes data documents.
type Codec interface {
	// Name returns a short format name used in logs.
	Name() string
	// Marshal encodes the document.
	Marshal(doc *document) ([]byte, error)
	// Unmarshal decodes data into the document.
	Unmarshal(data []byte, doc *document) error
}

// YAML returns the YAML codec.
func YAML() Codec { return yamlCodec{} }

// TOML returns the TOML codec.
func TOML() Codec { return tomlCodec{} }

// CodecFor picks a codec from the file extension. YAML is the default.
func CodecFor(path string) Codec {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML()
	}

	return YAML()
}

// yamlCodec reads and writes YAML documents.
type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(doc *document) ([]byte, error) {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (yamlCodec) Unmarshal(data []byte, doc *document) error {
	return yaml.Unmarshal(data, doc)
}

// tomlCodec reads and writes TOML documents.
type tomlCodec struct{}

func (tomlCodec) Name() string { return "toml" }

func (tomlCodec) Marshal(doc *document) ([]byte, error) {
	return toml.Marshal(doc)
}

func (tomlCodec) Unmarshal(data []byte, doc *document) error {
	return toml.Unmarshal(data, doc)
}

// toDocument converts beds into their on-disk representation.
func toDocument(beds []*sunbed.SunBed) (*document, error) {
	doc := &document{
		Version: FormatVersion,
		SunBeds: make([]record, 0, len(beds)),
	}

	for i, bed := range beds {
		if bed == nil {
			return nil, fmt.Errorf("sun bed at position %d is nil", i)
		}

		doc.SunBeds = append(doc.SunBeds, record{
			ID:     bed.ID(),
			Booked: bed.IsBooked(),
		})
	}

	return doc, nil
}

// fromDocument converts the on-disk representation back into beds.
func fromDocument(doc *document) []*sunbed.SunBed {
	beds := make([]*sunbed.SunBed, 0, len(doc.SunBeds))
	for _, r := range doc.SunBeds {
		beds = append(beds, sunbed.Restore(r.ID, r.Booked))
	}

	return beds
}

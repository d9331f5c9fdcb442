package sunbeds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/oshokin/sunbed-manager/internal/config"
	"github.com/oshokin/sunbed-manager/internal/domain/sunbed"
	"github.com/oshokin/sunbed-manager/internal/logger"
)

// Repository defines persistence operations for the sun bed collection.
type Repository interface {
	Load(ctx context.Context) ([]*sunbed.SunBed, error)
	Save(ctx context.Context, beds []*sunbed.SunBed) error
}

var (
	// ErrNotFound is returned when the data file does not exist yet.
	ErrNotFound = errors.New("data file not found")
	// ErrInvalidFormat is returned when the data file does not hold a valid collection.
	ErrInvalidFormat = errors.New("invalid data file format")
)

// FileRepository persists the collection to a text file on disk.
type FileRepository struct {
	// path is the filesystem location of the data file.
	path string
	// codec encodes and decodes the data document.
	codec Codec
	// validate checks documents before writing and after reading.
	validate *validator.Validate
	// mu serializes access to the data file.
	mu sync.Mutex
}

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithCodec forces a codec instead of picking one from the file extension.
func WithCodec(codec Codec) Option {
	return func(r *FileRepository) {
		if codec != nil {
			r.codec = codec
		}
	}
}

// NewFileRepository creates a repository that reads/writes the data file at the provided path.
func NewFileRepository(path string, opts ...Option) *FileRepository {
	path = filepath.Clean(path)

	r := &FileRepository{
		path:     path,
		codec:    CodecFor(path),
		validate: validator.New(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the location of the data file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the collection from disk.
func (r *FileRepository) Load(ctx context.Context) ([]*sunbed.SunBed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read data file: %w", err)
	}

	var doc document
	if err = r.codec.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidFormat, r.codec.Name(), err)
	}

	if err = r.validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	logger.DebugKV(ctx, "Data file read", "path", r.path, "count", len(doc.SunBeds))

	return fromDocument(&doc), nil
}

// Save writes the whole collection to disk, replacing the previous contents.
// The document goes to a temporary file first and is renamed over the data file.
func (r *FileRepository) Save(ctx context.Context, beds []*sunbed.SunBed) error {
	doc, err := toDocument(beds)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	if err = r.validate.Struct(doc); err != nil {
		return fmt.Errorf("validate collection: %w", err)
	}

	data, err := r.codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err = r.writeAtomic(data); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Data file written", "path", r.path, "count", len(beds))

	return nil
}

// writeAtomic replaces the data file with data (caller must hold the lock).
func (r *FileRepository) writeAtomic(data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err = tmpFile.Chmod(config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	return nil
}

// Package sunbeds implements persistence for the sun bed collection.
//
// The FileRepository stores and loads the whole ordered collection as a
// record-per-bed text document (YAML or TOML) and exposes a Repository
// interface that the collection service depends on.
package sunbeds

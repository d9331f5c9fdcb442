// Package config defines the settings used by the sunbeds binary and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the data file location and the log level.
package config

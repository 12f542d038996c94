// Package file provides the file-backed configuration store.
//
// Configuration lives in ~/.flightdeck/config.toml by default. A path ending
// in .yaml or .yml is read and written as YAML instead.
package file

// Package normalisers provides implementations of the Normaliser interface
// for each message source. Each normaliser knows the field names its
// adapter emits and maps them onto the common Item shape.
//
// Normalisers are registered with the Registry at startup.
package normalisers

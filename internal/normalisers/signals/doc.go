// Package signals holds the keyword markers and timestamp parsing shared by
// the source normalisers.
package signals

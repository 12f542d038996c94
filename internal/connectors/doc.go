// Package connectors holds the adapters that produce raw rows for a run.
//
// Subpackages:
//   - fixture: reads a whole snapshot from a payload JSON file
//   - multi: fans out to one SourceFetcher per source and assembles a live snapshot
//   - chatexport: reads chat rows from an exported search-results file
//   - google: Calendar and Gmail fetchers plus shared auth, rate limiting and errors
//
// Fetchers return complete batches. Normalisation happens later in
// internal/normalisers, never in a connector.
package connectors

// Package domain defines the core business entities for the flight deck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRow: An adapter's untouched output row for one source
//   - Item: A normalised, scored unit of actionable content
//   - Sections: The six ordered partitions of a rendered brief
//   - RefreshEvent: The frozen record of one pipeline run
//   - DeliveryResult: The outcome of posting a brief to its sinks
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

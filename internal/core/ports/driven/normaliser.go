package driven

import (
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// Normaliser maps one source's raw rows into items.
// Implementations must be pure: the same rows and now give the same result.
type Normaliser interface {
	// Source returns the source whose rows this normaliser understands.
	Source() domain.Source

	// Normalise converts rows, preserving input order. Rows missing required
	// fields are counted in Dropped; rows outside the configured scope are
	// counted in OutOfScope.
	Normalise(rows []domain.RawRow, now time.Time) NormaliseResult
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Items are in input order.
	Items []domain.Item

	// Dropped counts rows lacking an id/url or a parseable timestamp.
	Dropped int

	// OutOfScope counts rows filtered by allowlist or time window.
	OutOfScope int
}

// NormaliserRegistry selects the normaliser for a source.
type NormaliserRegistry interface {
	// Register adds or replaces the normaliser for its source.
	Register(n Normaliser)

	// Get returns the normaliser for src.
	Get(src domain.Source) (Normaliser, error)
}

// ChannelStatsProvider is implemented by normalisers that can summarise
// their raw rows by channel for diagnostics.
type ChannelStatsProvider interface {
	ChannelStats(rows []domain.RawRow) domain.ChannelStats
}

package driven

import (
	"context"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// SourceFetcher fetches the complete row set for a single source.
// Implementations never stream: the returned slice is the whole batch.
type SourceFetcher interface {
	// Source returns the source this fetcher serves.
	Source() domain.Source

	// Fetch returns rows in adapter order. An error means the source's tool
	// could not be reached.
	Fetch(ctx context.Context) ([]domain.RawRow, error)
}

// SnapshotFetcher produces the input snapshot for one run.
type SnapshotFetcher interface {
	// Mode reports whether the snapshot is live or read from a fixture.
	Mode() domain.FetchMode

	// FetchSnapshot returns one batch per source plus diagnostics.
	// Per-source failures are recorded on the batch, not returned.
	FetchSnapshot(ctx context.Context) (*domain.Snapshot, error)
}

package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// RunLog persists frozen refresh events and the last-known-good brief.
// Events are append-only and keyed by run ID.
type RunLog interface {
	// Commit appends event and, when brief is non-nil, stores it as the latest
	// brief. Both writes become visible together or not at all.
	Commit(ctx context.Context, event domain.RefreshEvent, brief *domain.Brief) error

	// Get retrieves an event by run ID.
	Get(ctx context.Context, runID string) (*domain.RefreshEvent, error)

	// Recent returns up to limit events, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.RefreshEvent, error)

	// LatestBrief returns the most recently committed brief.
	// Returns domain.ErrNotFound when no brief exists.
	LatestBrief(ctx context.Context) (*domain.Brief, error)

	// Prune removes events and briefs completed before cutoff.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

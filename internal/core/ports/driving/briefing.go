package driving

import (
	"context"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// RunOptions parameterises one pipeline run.
type RunOptions struct {
	// Trigger records what started the run.
	Trigger domain.Trigger

	// AllowEmpty overrides the empty-snapshot guard for this run.
	AllowEmpty bool

	// SkipDelivery renders the brief without posting it (dry run).
	SkipDelivery bool
}

// RunReport is what a caller sees after a run.
type RunReport struct {
	// Event is the frozen refresh event.
	Event domain.RefreshEvent

	// Brief is nil unless the run rendered one.
	Brief *domain.Brief
}

// BriefingService runs the ingestion-to-delivery pipeline.
type BriefingService interface {
	// Run executes one pipeline run. A returned error means the run did not
	// reach delivered; the report is still populated with the frozen event.
	Run(ctx context.Context, opts RunOptions) (*RunReport, error)
}

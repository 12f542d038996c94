package driving

import (
	"context"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// AuditReport summarises recent runs for the integration audit workflow.
type AuditReport struct {
	// Latest is the most recent refresh event, nil if none exist.
	Latest *domain.RefreshEvent `json:"latest,omitempty"`

	// Recent lists events most recent first.
	Recent []domain.RefreshEvent `json:"recent_refresh_events"`

	// LastGoodRunID is the run that produced the last-known-good brief.
	LastGoodRunID string `json:"last_good_run_id,omitempty"`

	// Findings are human-readable problems noticed in Recent.
	Findings []string `json:"findings,omitempty"`
}

// AuditService inspects the refresh event log.
type AuditService interface {
	// Audit returns the latest events and findings. limit <= 0 uses the configured default.
	Audit(ctx context.Context, limit int) (*AuditReport, error)

	// LatestBrief returns the last-known-good brief.
	LatestBrief(ctx context.Context) (*domain.Brief, error)
}

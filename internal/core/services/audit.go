package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// DefaultAuditLimit is used when neither the caller nor settings give a limit.
const DefaultAuditLimit = 5

// AuditService inspects the refresh event log for the integration audit.
type AuditService struct {
	runLog       driven.RunLog
	defaultLimit int
}

// NewAuditService creates an audit service over runLog.
func NewAuditService(runLog driven.RunLog, defaultLimit int) *AuditService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultAuditLimit
	}
	return &AuditService{runLog: runLog, defaultLimit: defaultLimit}
}

// Audit returns the most recent events with findings.
func (s *AuditService) Audit(ctx context.Context, limit int) (*driving.AuditReport, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	events, err := s.runLog.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list refresh events: %w", err)
	}

	report := &driving.AuditReport{Recent: events}
	if len(events) > 0 {
		latest := events[0]
		report.Latest = &latest
	}

	brief, err := s.runLog.LatestBrief(ctx)
	switch {
	case err == nil:
		report.LastGoodRunID = brief.RunID
	case errors.Is(err, domain.ErrNotFound):
		report.Findings = append(report.Findings, "no last-known-good brief has been stored")
	default:
		return nil, fmt.Errorf("get latest brief: %w", err)
	}

	for i := range events {
		report.Findings = append(report.Findings, findings(&events[i])...)
	}
	return report, nil
}

// LatestBrief returns the last-known-good brief.
func (s *AuditService) LatestBrief(ctx context.Context) (*domain.Brief, error) {
	brief, err := s.runLog.LatestBrief(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest brief: %w", err)
	}
	return brief, nil
}

func findings(e *domain.RefreshEvent) []string {
	var out []string
	id := shortID(e.RunID)

	switch e.Status {
	case domain.StatusFailed:
		out = append(out, fmt.Sprintf("run %s failed: %s", id, e.ErrorDetail))
	case domain.StatusEmptyGuardBlocked:
		out = append(out, fmt.Sprintf("run %s was blocked: every source returned zero rows", id))
	}
	if e.HasError(domain.ErrorKindAdapterUnavailable) && e.Status != domain.StatusFailed {
		out = append(out, fmt.Sprintf("run %s had unavailable source adapters: %s", id, e.ErrorDetail))
	}
	if d := e.Delivery; d != nil {
		switch {
		case d.PrimaryStatus == domain.SinkFailed && d.FallbackStatus == domain.SinkFailed:
			out = append(out, fmt.Sprintf("run %s was not delivered: primary and fallback sinks failed", id))
		case d.PrimaryStatus == domain.SinkFailed:
			out = append(out, fmt.Sprintf("run %s used fallback delivery to %s", id, d.Recipient))
		}
	}

	for _, src := range domain.AllSources() {
		c, ok := e.Counts[src]
		if !ok || c.Raw == 0 {
			continue
		}
		switch {
		case c.InScope == 0:
			out = append(out, fmt.Sprintf("run %s: %s fetched %d rows, none in scope", id, src, c.Raw))
		case c.Actionable == 0 && e.Status == domain.StatusOK:
			out = append(out, fmt.Sprintf("run %s: %s has %d in-scope rows, none actionable", id, src, c.InScope))
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

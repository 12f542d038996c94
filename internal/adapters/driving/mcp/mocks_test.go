package mcp

import (
	"context"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// mockAuditService is a mock implementation of driving.AuditService.
type mockAuditService struct {
	report    *driving.AuditReport
	brief     *domain.Brief
	err       error
	lastLimit int
}

func (m *mockAuditService) Audit(_ context.Context, limit int) (*driving.AuditReport, error) {
	m.lastLimit = limit
	return m.report, m.err
}

func (m *mockAuditService) LatestBrief(_ context.Context) (*domain.Brief, error) {
	if m.brief == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.brief, m.err
}

// mockBriefingService is a mock implementation of driving.BriefingService.
type mockBriefingService struct {
	report *driving.RunReport
	err    error
	opts   driving.RunOptions
}

func (m *mockBriefingService) Run(_ context.Context, opts driving.RunOptions) (*driving.RunReport, error) {
	m.opts = opts
	return m.report, m.err
}

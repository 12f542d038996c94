package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func commitEvent(t *testing.T, log *memory.RunLog, e domain.RefreshEvent, brief *domain.Brief) {
	t.Helper()
	if e.State == "" {
		e.State = domain.StateDelivered
	}
	require.NoError(t, log.Commit(context.Background(), e, brief))
}

func TestAuditService_EmptyLog(t *testing.T) {
	svc := NewAuditService(memory.NewRunLog(), 0)

	report, err := svc.Audit(context.Background(), 0)

	require.NoError(t, err)
	assert.Nil(t, report.Latest)
	assert.Empty(t, report.Recent)
	assert.Contains(t, report.Findings, "no last-known-good brief has been stored")

	_, err = svc.LatestBrief(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditService_Findings(t *testing.T) {
	log := memory.NewRunLog()
	commitEvent(t, log, domain.RefreshEvent{
		RunID:       "good-run-0001",
		Status:      domain.StatusOK,
		CompletedAt: testNow.Add(-3 * time.Hour),
		Counts: map[domain.Source]domain.SourceCounts{
			domain.SourceChat: {Raw: 4, InScope: 0},
		},
		Delivery: &domain.DeliveryResult{
			PrimaryStatus:  domain.SinkFailed,
			FallbackStatus: domain.SinkOK,
			Recipient:      "me@corp.test",
		},
	}, &domain.Brief{RunID: "good-run-0001"})
	commitEvent(t, log, domain.RefreshEvent{
		RunID:       "blocked-run-0002",
		State:       domain.StateEmptyGuardBlocked,
		Status:      domain.StatusEmptyGuardBlocked,
		CompletedAt: testNow.Add(-2 * time.Hour),
	}, nil)
	commitEvent(t, log, domain.RefreshEvent{
		RunID:       "failed-run-0003",
		State:       domain.StateFailed,
		Status:      domain.StatusFailed,
		ErrorDetail: "all source adapters unavailable",
		Errors:      []domain.ErrorKind{domain.ErrorKindAdapterUnavailable, domain.ErrorKindFatalPipeline},
		CompletedAt: testNow.Add(-time.Hour),
	}, nil)

	svc := NewAuditService(log, 5)
	report, err := svc.Audit(context.Background(), 0)

	require.NoError(t, err)
	require.NotNil(t, report.Latest)
	assert.Equal(t, "failed-run-0003", report.Latest.RunID)
	assert.Len(t, report.Recent, 3)
	assert.Equal(t, "good-run-0001", report.LastGoodRunID)
	assert.Equal(t, []string{
		"run failed-r failed: all source adapters unavailable",
		"run blocked- was blocked: every source returned zero rows",
		"run good-run used fallback delivery to me@corp.test",
		"run good-run: chat fetched 4 rows, none in scope",
	}, report.Findings)
}

func TestAuditService_Limit(t *testing.T) {
	log := memory.NewRunLog()
	for _, id := range []string{"a", "b", "c"} {
		commitEvent(t, log, domain.RefreshEvent{RunID: id, Status: domain.StatusOK}, nil)
	}
	svc := NewAuditService(log, 2)

	report, err := svc.Audit(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, report.Recent, 2)

	report, err = svc.Audit(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, report.Recent, 3)
}

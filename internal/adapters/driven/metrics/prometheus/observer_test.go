package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func scrape(t *testing.T, o *Observer) string {
	t.Helper()
	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserver_ObserveRun(t *testing.T) {
	completed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	o := NewObserver()

	o.ObserveRun(domain.RefreshEvent{
		RunID:     "run-1",
		Trigger:   domain.TriggerScheduled,
		State:     domain.StateDelivered,
		Status:    domain.StatusOK,
		Errors:    []domain.ErrorKind{domain.ErrorKindDeliveryFailure},
		Counts:    map[domain.Source]domain.SourceCounts{domain.SourceChat: {Raw: 4, InScope: 3, Actionable: 2}},
		Delivery:  &domain.DeliveryResult{PrimaryStatus: domain.SinkFailed, FallbackStatus: domain.SinkOK},
		StartedAt: completed.Add(-2 * time.Second), CompletedAt: completed,
	})
	o.ObserveRun(domain.RefreshEvent{
		RunID:   "run-2",
		Trigger: domain.TriggerManual,
		State:   domain.StateEmptyGuardBlocked,
		Status:  domain.StatusEmptyGuardBlocked,
		Errors:  []domain.ErrorKind{domain.ErrorKindEmptySnapshotBlocked},
	})

	out := scrape(t, o)
	assert.Contains(t, out, `flightdeck_runs_total{status="ok",trigger="scheduled"} 1`)
	assert.Contains(t, out, `flightdeck_runs_total{status="empty_guard_blocked",trigger="manual"} 1`)
	assert.Contains(t, out, `flightdeck_run_errors_total{kind="delivery_failure"} 1`)
	assert.Contains(t, out, `flightdeck_run_errors_total{kind="empty_snapshot_blocked"} 1`)
	assert.Contains(t, out, `flightdeck_deliveries_total{sink="primary",status="failed"} 1`)
	assert.Contains(t, out, `flightdeck_deliveries_total{sink="fallback",status="ok"} 1`)
	assert.Contains(t, out, `flightdeck_last_run_timestamp_seconds{status="ok"}`)
	assert.NotContains(t, out, `flightdeck_last_run_timestamp_seconds{status="empty_guard_blocked"}`)
	assert.Contains(t, out, `flightdeck_run_duration_seconds_count 2`)
}

func TestObserver_SourceRowsTrackLastRun(t *testing.T) {
	o := NewObserver()

	o.ObserveRun(domain.RefreshEvent{Counts: map[domain.Source]domain.SourceCounts{domain.SourceEmail: {Raw: 9}}})
	o.ObserveRun(domain.RefreshEvent{Counts: map[domain.Source]domain.SourceCounts{domain.SourceEmail: {Raw: 2}}})

	out := scrape(t, o)
	assert.Contains(t, out, `flightdeck_source_rows{source="email",stage="raw"} 2`)
	assert.Contains(t, out, `flightdeck_source_rows{source="calendar",stage="raw"} 0`)
	assert.NotContains(t, out, `sink="fallback"`)
}

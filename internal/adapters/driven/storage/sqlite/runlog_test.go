package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func TestRunLog_CommitAndGet(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).RunLog()

	in := event("run-1", base)
	in.ErrorDetail = "gmail: tool unavailable"
	in.Errors = []domain.ErrorKind{domain.ErrorKindAdapterUnavailable}
	in.ChannelStats = &domain.ChannelStats{
		InScope:     2,
		Unknown:     1,
		TopChannels: []domain.ChannelCount{{Channel: "eng", Count: 2}},
	}
	in.Delivery = &domain.DeliveryResult{
		PrimaryStatus:  domain.SinkOK,
		FallbackStatus: domain.SinkNotAttempted,
		Recipient:      "webhook",
	}

	require.NoError(t, log.Commit(ctx, in, nil))

	got, err := log.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, in, *got)
}

func TestRunLog_GetMissing(t *testing.T) {
	_, err := newTestStore(t).RunLog().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunLog_CommitRejects(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).RunLog()

	assert.ErrorIs(t, log.Commit(ctx, domain.RefreshEvent{}, nil), domain.ErrInvalidInput)

	open := event("run-open", base)
	open.State = domain.StateRendered
	assert.ErrorIs(t, log.Commit(ctx, open, nil), domain.ErrRunNotTerminal)

	require.NoError(t, log.Commit(ctx, event("run-1", base), nil))
	assert.ErrorIs(t, log.Commit(ctx, event("run-1", base), nil), domain.ErrInvalidInput)
}

func TestRunLog_Recent(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).RunLog()

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, log.Commit(ctx, event(id, base.Add(time.Duration(i)*time.Hour)), nil))
	}

	recent, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-3", recent[0].RunID)
	assert.Equal(t, "run-2", recent[1].RunID)

	all, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunLog_LatestBrief(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).RunLog()

	_, err := log.LatestBrief(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	due := base.Add(time.Hour)
	item := domain.Item{
		Source:            domain.SourceCalendar,
		IDOrURL:           "evt-1",
		Title:             "Design review",
		Timestamp:         base,
		DueAt:             &due,
		UrgencySignals:    []string{domain.SignalMeetingWithin2h},
		Score:             50,
		ScoreReasons:      []string{"+50 due within 2h"},
		RecommendedAction: "Prep talking points/docs and confirm agenda now.",
	}
	first := &domain.Brief{
		RunID:       "run-1",
		GeneratedAt: base,
		Text:        "# Daily Flight Deck (2026-03-02)",
		Sections:    domain.Sections{TopActions: []domain.Item{item}, FirstTask: &item},
		Items:       []domain.Item{item},
	}
	require.NoError(t, log.Commit(ctx, event("run-1", base), first))

	failed := event("run-2", base.Add(time.Hour))
	failed.State = domain.StateFailed
	failed.Status = domain.StatusFailed
	require.NoError(t, log.Commit(ctx, failed, nil))

	got, err := log.LatestBrief(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, base, got.GeneratedAt)
	assert.Equal(t, first.Text, got.Text)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "evt-1", got.Items[0].IDOrURL)
	require.NotNil(t, got.Items[0].DueAt)
	assert.True(t, due.Equal(*got.Items[0].DueAt))
	require.NotNil(t, got.Sections.FirstTask)
	assert.Equal(t, "Design review", got.Sections.FirstTask.Title)

	second := &domain.Brief{RunID: "run-3", GeneratedAt: base.Add(2 * time.Hour), Text: "newer"}
	require.NoError(t, log.Commit(ctx, event("run-3", base.Add(2*time.Hour)), second))

	got, err = log.LatestBrief(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Text)
}

func TestRunLog_Prune(t *testing.T) {
	ctx := context.Background()
	log := newTestStore(t).RunLog()

	old := &domain.Brief{RunID: "old", GeneratedAt: base, Text: "old brief"}
	require.NoError(t, log.Commit(ctx, event("old", base), old))
	require.NoError(t, log.Commit(ctx, event("new", base.Add(48*time.Hour)), nil))

	removed, err := log.Prune(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = log.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = log.LatestBrief(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	recent, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].RunID)
}

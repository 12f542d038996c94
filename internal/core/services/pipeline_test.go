package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
	"github.com/custodia-labs/flightdeck/internal/normalisers"
	"github.com/custodia-labs/flightdeck/internal/normalisers/calendar"
	"github.com/custodia-labs/flightdeck/internal/normalisers/chat"
	"github.com/custodia-labs/flightdeck/internal/normalisers/email"
)

type pipelineFixture struct {
	pipeline *Pipeline
	primary  *mockSink
	fallback *mockSink
	runLog   *memory.RunLog
	observer *mockObserver
}

func newPipelineFixture(fetcher *mockSnapshotFetcher) *pipelineFixture {
	f := &pipelineFixture{
		primary:  &mockSink{name: "webhook", recipient: "https://hooks.test/brief"},
		fallback: &mockSink{name: "file", recipient: "/var/outbox"},
		runLog:   memory.NewRunLog(),
		observer: &mockObserver{},
	}
	registry := normalisers.NewRegistry(
		chat.New(domain.ChatSettings{LookbackHours: 24}, nil),
		calendar.New(24),
		email.New(24, nil),
	)
	dispatcher := NewDispatcher(f.primary, f.fallback, "", 0)
	f.pipeline = NewPipeline(fetcher, registry, dispatcher, f.runLog, domain.DefaultSettings())
	f.pipeline.SetClock(fixedClock)
	f.pipeline.AddObserver(f.observer)
	return f
}

func chatRow(info, text string, ts time.Time) domain.RawRow {
	return domain.RawRow{
		"message_info_str": info,
		"channel_name":     "eng-oncall",
		"text":             text,
		"message_ts":       float64(ts.Unix()),
		"web_link":         "https://chat.test/archives/C1/" + info,
	}
}

func TestPipeline_EndToEndDuplicateChatRows(t *testing.T) {
	due := chatRow("abc", "Can you review the deploy plan before the window", testNow.Add(-10*time.Minute))
	due["due_at"] = testNow.Add(time.Hour).Format(time.RFC3339)
	dup := chatRow("abc", "duplicate delivery of the same message", testNow.Add(-9*time.Minute))
	other := chatRow("def", "FYI lunch moved", testNow.Add(-20*time.Minute))

	f := newPipelineFixture(&mockSnapshotFetcher{
		mode: domain.FetchModeFixture,
		snapshot: snapshotOf(domain.FetchModeFixture, map[domain.Source][]domain.RawRow{
			domain.SourceChat: {due, dup, other},
		}),
	})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{Trigger: domain.TriggerManual})
	require.NoError(t, err)

	event := report.Event
	assert.Equal(t, domain.StateDelivered, event.State)
	assert.Equal(t, domain.StatusOK, event.Status)
	assert.Equal(t, domain.FetchModeFixture, event.FetchMode)
	assert.Equal(t, 3, event.Counts[domain.SourceChat].Raw)
	assert.Equal(t, 2, event.Counts[domain.SourceChat].InScope)
	assert.Equal(t, 2, event.Counts[domain.SourceChat].Actionable)
	require.NotNil(t, event.ChannelStats)
	assert.Equal(t, 3, event.ChannelStats.InScope)

	require.NotNil(t, report.Brief)
	first := report.Brief.Sections.FirstTask
	require.NotNil(t, first)
	assert.Equal(t, "abc", first.IDOrURL)
	assert.Equal(t, 85, first.Score)
	assert.Equal(t, []string{"abc"}, ids(report.Brief.Sections.TimeCritical))
	assert.Equal(t, "abc", report.Brief.Sections.TopActions[0].IDOrURL)
	assert.Contains(t, report.Brief.Text, "Can you review the deploy plan before the window")

	assert.Equal(t, 1, f.primary.calls())
	assert.Equal(t, 0, f.fallback.calls())
	require.NotNil(t, event.Delivery)
	assert.Equal(t, domain.SinkNotAttempted, event.Delivery.FallbackStatus)

	stored, err := f.runLog.Get(context.Background(), event.RunID)
	require.NoError(t, err)
	assert.Equal(t, event.Status, stored.Status)
	brief, err := f.runLog.LatestBrief(context.Background())
	require.NoError(t, err)
	assert.Equal(t, event.RunID, brief.RunID)
	require.Len(t, f.observer.events, 1)
}

func TestPipeline_EmptyGuardBlocksDelivery(t *testing.T) {
	f := newPipelineFixture(&mockSnapshotFetcher{
		mode:     domain.FetchModeLive,
		snapshot: snapshotOf(domain.FetchModeLive, nil),
	})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	assert.ErrorIs(t, err, domain.ErrEmptySnapshot)
	require.NotNil(t, report)
	assert.Equal(t, domain.StatusEmptyGuardBlocked, report.Event.Status)
	assert.True(t, report.Event.HasError(domain.ErrorKindEmptySnapshotBlocked))
	assert.Nil(t, report.Brief)
	assert.Equal(t, 0, f.primary.calls())
	assert.Equal(t, 0, f.fallback.calls())

	recent, _ := f.runLog.Recent(context.Background(), 1)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.StatusEmptyGuardBlocked, recent[0].Status)
	_, err = f.runLog.LatestBrief(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPipeline_EmptySnapshotWithOverride(t *testing.T) {
	f := newPipelineFixture(&mockSnapshotFetcher{
		mode:     domain.FetchModeFixture,
		snapshot: snapshotOf(domain.FetchModeFixture, nil),
	})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{AllowEmpty: true})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, report.Event.Status)
	assert.Contains(t, report.Brief.Text, "## "+domain.SectionFirstTask+"\n"+EmptySection)
	assert.Equal(t, 1, f.primary.calls())
}

func TestPipeline_AllAdaptersUnavailableFails(t *testing.T) {
	snap := snapshotOf(domain.FetchModeLive, nil)
	for _, src := range domain.AllSources() {
		snap.Batches[src] = domain.SourceBatch{Source: src, Err: errUnreachable}
	}
	f := newPipelineFixture(&mockSnapshotFetcher{mode: domain.FetchModeLive, snapshot: snap})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	assert.ErrorIs(t, err, domain.ErrAllAdaptersUnavailable)
	assert.Equal(t, domain.StatusFailed, report.Event.Status)
	assert.True(t, report.Event.HasError(domain.ErrorKindAdapterUnavailable))
	assert.True(t, report.Event.HasError(domain.ErrorKindFatalPipeline))
	assert.Nil(t, report.Brief)
	assert.Equal(t, 0, f.primary.calls())
}

func TestPipeline_OneAdapterUnavailableStillDelivers(t *testing.T) {
	snap := snapshotOf(domain.FetchModeFixture, map[domain.Source][]domain.RawRow{
		domain.SourceEmail: {{
			"id":       "m1",
			"subject":  "Quarterly numbers",
			"from_":    "finance@corp.test",
			"email_ts": testNow.Add(-time.Hour).Format(time.RFC3339),
		}},
	})
	snap.Batches[domain.SourceChat] = domain.SourceBatch{Source: domain.SourceChat, Err: errUnreachable}
	snap.Diagnostics.Errors = []string{"chat: search tool timed out"}
	f := newPipelineFixture(&mockSnapshotFetcher{mode: domain.FetchModeFixture, snapshot: snap})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, report.Event.Status)
	assert.True(t, report.Event.HasError(domain.ErrorKindAdapterUnavailable))
	assert.Contains(t, report.Event.ErrorDetail, "chat: search tool timed out")
	assert.Equal(t, 1, report.Event.Counts[domain.SourceEmail].InScope)
}

func TestPipeline_FetchErrorIsFatal(t *testing.T) {
	f := newPipelineFixture(&mockSnapshotFetcher{mode: domain.FetchModeFixture, err: errors.New("bad payload")})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	assert.ErrorIs(t, err, domain.ErrFatalPipeline)
	assert.Equal(t, domain.StateFailed, report.Event.State)
	assert.Contains(t, report.Event.ErrorDetail, "bad payload")
}

func TestPipeline_BothSinksFailStillDelivered(t *testing.T) {
	f := newPipelineFixture(&mockSnapshotFetcher{
		mode: domain.FetchModeFixture,
		snapshot: snapshotOf(domain.FetchModeFixture, map[domain.Source][]domain.RawRow{
			domain.SourceChat: {chatRow("abc", "hello", testNow.Add(-time.Minute))},
		}),
	})
	f.primary.err = errUnreachable
	f.fallback.err = errUnreachable

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.StateDelivered, report.Event.State)
	assert.Equal(t, domain.SinkFailed, report.Event.Delivery.PrimaryStatus)
	assert.Equal(t, domain.SinkFailed, report.Event.Delivery.FallbackStatus)
	assert.True(t, report.Event.HasError(domain.ErrorKindDeliveryFailure))
}

func TestPipeline_SyntheticContentInLiveMode(t *testing.T) {
	row := chatRow("abc", "hello", testNow.Add(-time.Minute))
	row["display_url"] = "https://chat.example/archives/C1/p1"
	f := newPipelineFixture(&mockSnapshotFetcher{
		mode: domain.FetchModeLive,
		snapshot: snapshotOf(domain.FetchModeLive, map[domain.Source][]domain.RawRow{
			domain.SourceChat: {row},
		}),
	})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	assert.ErrorIs(t, err, domain.ErrSyntheticSnapshot)
	assert.Equal(t, domain.StatusFailed, report.Event.Status)
	assert.Equal(t, 0, f.primary.calls())
}

func TestPipeline_DroppedRowsAreCounted(t *testing.T) {
	f := newPipelineFixture(&mockSnapshotFetcher{
		mode: domain.FetchModeFixture,
		snapshot: snapshotOf(domain.FetchModeFixture, map[domain.Source][]domain.RawRow{
			domain.SourceChat: {
				chatRow("abc", "hello", testNow.Add(-time.Minute)),
				{"channel_name": "eng", "text": "no identity"},
			},
		}),
	})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{})

	require.NoError(t, err)
	counts := report.Event.Counts[domain.SourceChat]
	assert.Equal(t, 2, counts.Raw)
	assert.Equal(t, 1, counts.Dropped)
	assert.Equal(t, 1, counts.InScope)
	assert.True(t, report.Event.HasError(domain.ErrorKindNormalizationDrop))
}

func TestPipeline_SkipDeliveryDoesNotPersist(t *testing.T) {
	f := newPipelineFixture(&mockSnapshotFetcher{
		mode: domain.FetchModeFixture,
		snapshot: snapshotOf(domain.FetchModeFixture, map[domain.Source][]domain.RawRow{
			domain.SourceChat: {chatRow("abc", "hello", testNow.Add(-time.Minute))},
		}),
	})

	report, err := f.pipeline.Run(context.Background(), driving.RunOptions{SkipDelivery: true})

	require.NoError(t, err)
	assert.NotNil(t, report.Brief)
	assert.Nil(t, report.Event.Delivery)
	assert.Equal(t, 0, f.primary.calls())
	recent, _ := f.runLog.Recent(context.Background(), 0)
	assert.Empty(t, recent)
}

// blockingFetcher holds FetchSnapshot until released.
type blockingFetcher struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFetcher) Mode() domain.FetchMode { return domain.FetchModeFixture }

func (b *blockingFetcher) FetchSnapshot(_ context.Context) (*domain.Snapshot, error) {
	close(b.entered)
	<-b.release
	return snapshotOf(domain.FetchModeFixture, nil), nil
}

func TestPipeline_RejectsConcurrentRun(t *testing.T) {
	fetcher := &blockingFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	p := NewPipeline(fetcher, normalisers.NewRegistry(), NewDispatcher(nil, nil, "", 0), nil, domain.DefaultSettings())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run(context.Background(), driving.RunOptions{})
	}()
	<-fetcher.entered

	_, err := p.Run(context.Background(), driving.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)

	close(fetcher.release)
	<-done
}

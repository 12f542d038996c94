package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func timePtr(t time.Time) *time.Time { return &t }

func newItem(src domain.Source, id string, signals ...string) domain.Item {
	return domain.Item{
		Source:          src,
		IDOrURL:         id,
		DedupKey:        id,
		Title:           "item " + id,
		ChannelOrSender: "sender",
		Timestamp:       testNow.Add(-time.Hour),
		UrgencySignals:  signals,
	}
}

// mockSink implements driven.DeliverySink for testing.
type mockSink struct {
	name      string
	recipient string
	err       error

	mu       sync.Mutex
	messages []domain.Message
}

func (m *mockSink) Name() string      { return m.name }
func (m *mockSink) Recipient() string { return m.recipient }

func (m *mockSink) Post(_ context.Context, msg domain.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if m.err != nil {
		return "", m.err
	}
	return m.name + " accepted", nil
}

func (m *mockSink) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// mockSnapshotFetcher implements driven.SnapshotFetcher for testing.
type mockSnapshotFetcher struct {
	mode     domain.FetchMode
	snapshot *domain.Snapshot
	err      error
}

func (m *mockSnapshotFetcher) Mode() domain.FetchMode { return m.mode }

func (m *mockSnapshotFetcher) FetchSnapshot(_ context.Context) (*domain.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func snapshotOf(mode domain.FetchMode, rows map[domain.Source][]domain.RawRow) *domain.Snapshot {
	s := &domain.Snapshot{FetchMode: mode, Batches: make(map[domain.Source]domain.SourceBatch)}
	for _, src := range domain.AllSources() {
		s.Batches[src] = domain.SourceBatch{Source: src, Rows: rows[src]}
	}
	return s
}

// mockObserver records observed events.
type mockObserver struct {
	events []domain.RefreshEvent
}

func (m *mockObserver) ObserveRun(e domain.RefreshEvent) { m.events = append(m.events, e) }

var errUnreachable = errors.New("connection refused")

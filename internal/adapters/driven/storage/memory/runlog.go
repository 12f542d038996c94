package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure RunLog implements the interface.
var _ driven.RunLog = (*RunLog)(nil)

// RunLog is an in-memory implementation of driven.RunLog.
type RunLog struct {
	mu     sync.RWMutex
	events []domain.RefreshEvent
	index  map[string]int
	brief  *domain.Brief
}

// NewRunLog creates a new in-memory run log.
func NewRunLog() *RunLog {
	return &RunLog{index: make(map[string]int)}
}

// Commit appends event and replaces the latest brief when one is given.
func (l *RunLog) Commit(_ context.Context, event domain.RefreshEvent, brief *domain.Brief) error {
	if event.RunID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	if !event.State.IsTerminal() {
		return fmt.Errorf("%w: state %s", domain.ErrRunNotTerminal, event.State)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.index[event.RunID]; exists {
		return fmt.Errorf("%w: run %s already committed", domain.ErrInvalidInput, event.RunID)
	}
	l.index[event.RunID] = len(l.events)
	l.events = append(l.events, event)
	if brief != nil {
		b := *brief
		l.brief = &b
	}
	return nil
}

// Get retrieves an event by run ID.
func (l *RunLog) Get(_ context.Context, runID string) (*domain.RefreshEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	event := l.events[i]
	return &event, nil
}

// Recent returns up to limit events, most recent first.
func (l *RunLog) Recent(_ context.Context, limit int) ([]domain.RefreshEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.RefreshEvent, 0, len(l.events))
	for i := len(l.events) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, l.events[i])
	}
	return out, nil
}

// LatestBrief returns the most recently committed brief.
func (l *RunLog) LatestBrief(_ context.Context) (*domain.Brief, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.brief == nil {
		return nil, domain.ErrNotFound
	}
	b := *l.brief
	return &b, nil
}

// Prune removes events completed before cutoff. The latest brief is dropped
// when its event is pruned.
func (l *RunLog) Prune(_ context.Context, cutoff time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.events[:0]
	removed := 0
	for _, e := range l.events {
		if e.CompletedAt.Before(cutoff) {
			removed++
			if l.brief != nil && l.brief.RunID == e.RunID {
				l.brief = nil
			}
			continue
		}
		kept = append(kept, e)
	}
	l.events = kept
	l.index = make(map[string]int, len(kept))
	for i, e := range kept {
		l.index[e.RunID] = i
	}
	return removed, nil
}

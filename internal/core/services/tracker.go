package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// Tracker records the state machine of one pipeline run.
// The happy path is started -> fetching -> normalized -> scored -> rendered ->
// delivered; any non-terminal state may escape to failed, and normalized may
// escape to empty_guard_blocked. The event is only readable once frozen.
type Tracker struct {
	clock Clock

	mu      sync.Mutex
	event   domain.RefreshEvent
	started bool
	details []string
}

// NewTracker creates a tracker using clock for timestamps.
func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{clock: clock}
}

// Start opens the run in the started state.
func (t *Tracker) Start(runID string, trigger domain.Trigger) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("%w: run %s already started", domain.ErrInvalidTransition, t.event.RunID)
	}
	if runID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	if trigger == "" {
		trigger = domain.TriggerManual
	}
	t.started = true
	t.event = domain.RefreshEvent{
		RunID:     runID,
		Trigger:   trigger,
		Counts:    make(map[domain.Source]domain.SourceCounts),
		State:     domain.StateStarted,
		StartedAt: t.clock().UTC(),
	}
	return nil
}

// State returns the current state.
func (t *Tracker) State() domain.RunState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.event.State
}

// Advance moves to the next happy-path state and records counts for the
// sources present in counts.
func (t *Tracker) Advance(next domain.RunState, counts map[domain.Source]domain.SourceCounts) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen(); err != nil {
		return err
	}
	want, ok := t.event.State.Next()
	if !ok || want != next {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, t.event.State, next)
	}
	for src, c := range counts {
		t.event.Counts[src] = c
	}
	t.event.State = next
	if next.IsTerminal() {
		t.finish()
	}
	return nil
}

// Block ends the run in empty_guard_blocked. Only valid after normalisation.
func (t *Tracker) Block(detail string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen(); err != nil {
		return err
	}
	if t.event.State != domain.StateNormalized {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, t.event.State, domain.StateEmptyGuardBlocked)
	}
	t.record(domain.ErrorKindEmptySnapshotBlocked, detail)
	t.event.State = domain.StateEmptyGuardBlocked
	t.finish()
	return nil
}

// Fail ends the run in failed, recording kind and the error text.
func (t *Tracker) Fail(kind domain.ErrorKind, err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen(); err != nil {
		return err
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	t.record(kind, detail)
	t.event.State = domain.StateFailed
	t.finish()
	return nil
}

// RecordError notes a taxonomy occurrence without changing state.
func (t *Tracker) RecordError(kind domain.ErrorKind, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.event.State.IsTerminal() {
		return
	}
	t.record(kind, detail)
}

// Note appends detail to the event's error detail without recording a kind.
func (t *Tracker) Note(detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.event.State.IsTerminal() && detail != "" {
		t.details = append(t.details, detail)
	}
}

// SetFetchMode records how the snapshot was obtained.
func (t *Tracker) SetFetchMode(mode domain.FetchMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.event.State.IsTerminal() {
		t.event.FetchMode = mode
	}
}

// SetChannelStats records the chat channel histogram.
func (t *Tracker) SetChannelStats(stats domain.ChannelStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.event.State.IsTerminal() {
		t.event.ChannelStats = &stats
	}
}

// SetDelivery records the dispatcher outcome.
func (t *Tracker) SetDelivery(result domain.DeliveryResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.event.State.IsTerminal() {
		t.event.Delivery = &result
	}
}

// Freeze returns a copy of the event. It fails until a terminal state is reached.
func (t *Tracker) Freeze() (domain.RefreshEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || !t.event.State.IsTerminal() {
		return domain.RefreshEvent{}, fmt.Errorf("%w: state %s", domain.ErrRunNotTerminal, t.event.State)
	}
	return copyEvent(t.event), nil
}

func (t *Tracker) checkOpen() error {
	if !t.started {
		return fmt.Errorf("%w: run not started", domain.ErrInvalidTransition)
	}
	if t.event.State.IsTerminal() {
		return fmt.Errorf("%w: run already %s", domain.ErrInvalidTransition, t.event.State)
	}
	return nil
}

func (t *Tracker) record(kind domain.ErrorKind, detail string) {
	if !t.event.HasError(kind) {
		t.event.Errors = append(t.event.Errors, kind)
	}
	if detail != "" {
		t.details = append(t.details, detail)
	}
}

// finish must be called with mu held.
func (t *Tracker) finish() {
	t.event.Status = domain.StatusFor(t.event.State)
	t.event.ErrorDetail = strings.Join(t.details, "; ")
	t.event.CompletedAt = t.clock().UTC()
}

func copyEvent(e domain.RefreshEvent) domain.RefreshEvent {
	out := e
	out.Counts = make(map[domain.Source]domain.SourceCounts, len(e.Counts))
	for k, v := range e.Counts {
		out.Counts[k] = v
	}
	out.Errors = append([]domain.ErrorKind(nil), e.Errors...)
	if e.ChannelStats != nil {
		stats := *e.ChannelStats
		stats.TopChannels = append([]domain.ChannelCount(nil), e.ChannelStats.TopChannels...)
		out.ChannelStats = &stats
	}
	if e.Delivery != nil {
		d := *e.Delivery
		out.Delivery = &d
	}
	return out
}

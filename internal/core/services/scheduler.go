package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// DefaultTick is how often the scheduler checks whether the briefing is due.
const DefaultTick = time.Minute

// Scheduler triggers scheduled briefing runs.
// A failed run is not retried until its next interval.
type Scheduler struct {
	briefing driving.BriefingService
	store    driven.TaskStore
	tick     time.Duration
	clock    Clock

	mu      sync.Mutex
	task    domain.ScheduledTask
	active  bool
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler running briefing every interval.
// The first run happens as soon as the scheduler starts.
func NewScheduler(briefing driving.BriefingService, interval time.Duration) *Scheduler {
	return &Scheduler{
		briefing: briefing,
		tick:     DefaultTick,
		clock:    time.Now,
		task: domain.ScheduledTask{
			ID:       domain.TaskIDBriefing,
			Name:     "Daily Briefing",
			Interval: interval,
		},
	}
}

// SetTick changes the due-check period. Must be called before Start.
func (s *Scheduler) SetTick(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// SetClock replaces the clock. Must be called before Start.
func (s *Scheduler) SetClock(clock Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// SetStore persists task state through store. Must be called before Start.
func (s *Scheduler) SetStore(store driven.TaskStore) {
	s.store = store
}

// Task returns a copy of the scheduled task state.
func (s *Scheduler) Task() domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// SetInterval changes the run interval and reschedules the next run from now.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval <= 0 || interval == s.task.Interval {
		return
	}
	s.task.Interval = interval
	s.task.NextRun = s.clock().Add(interval)
	logger.Info("scheduler: interval changed to %s", interval)
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if s.task.Interval <= 0 {
		s.mu.Unlock()
		return errors.New("scheduler: interval must be positive")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.restore(ctx)
	return s.run(ctx, stopCh)
}

// restore loads the saved timetable. A changed interval reschedules from
// the last run.
func (s *Scheduler) restore(ctx context.Context) {
	if s.store == nil {
		return
	}
	saved, err := s.store.GetTask(ctx, s.task.ID)
	if err != nil {
		logger.Warn("scheduler: load task state: %v", err)
		return
	}
	if saved == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.LastRun = saved.LastRun
	s.task.LastError = saved.LastError
	s.task.LastRunID = saved.LastRunID
	switch {
	case saved.Interval == s.task.Interval:
		s.task.NextRun = saved.NextRun
	case !saved.LastRun.IsZero():
		s.task.NextRun = saved.LastRun.Add(s.task.Interval)
	}
	logger.Debug("scheduler: restored task state, next run %s", s.task.NextRun.Format(time.RFC3339))
}

func (s *Scheduler) save(ctx context.Context, task domain.ScheduledTask) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTask(ctx, &task); err != nil {
		logger.Warn("scheduler: save task state: %v", err)
	}
}

// Stop gracefully shuts down the scheduler and waits for an active run.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Scheduler) run(ctx context.Context, stopCh chan struct{}) error {
	s.checkAndRun(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun starts the briefing if it is due and no run is active.
func (s *Scheduler) checkAndRun(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if s.active || !s.task.Due(now) {
		return
	}
	s.active = true
	s.task.LastRun = now

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		report, err := s.briefing.Run(ctx, driving.RunOptions{Trigger: domain.TriggerScheduled})

		s.mu.Lock()
		s.active = false
		ended := s.clock()
		s.task.NextRun = ended.Add(s.task.Interval)
		s.task.LastError = ""
		if report != nil {
			s.task.LastRunID = report.Event.RunID
		}
		if err != nil {
			s.task.LastError = err.Error()
			logger.Warn("scheduler: briefing run failed: %v", err)
		}
		task := s.task
		s.mu.Unlock()

		s.save(context.WithoutCancel(ctx), task)
	}()
}

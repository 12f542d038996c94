package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastRunID links to the refresh event of the last run.
	LastRunID string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskIDBriefing is the built-in scheduled briefing run.
const TaskIDBriefing = "briefing-run"

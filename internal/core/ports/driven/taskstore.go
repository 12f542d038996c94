package driven

import (
	"context"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// TaskStore persists scheduled task state so a restarted scheduler keeps
// its timetable.
type TaskStore interface {
	// GetTask retrieves a task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error
}

package driving

import "context"

// Scheduler triggers scheduled briefing runs.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop and waits for an active run.
	Stop() error
}

package driven

import "github.com/custodia-labs/flightdeck/internal/core/domain"

// RunObserver is notified once per run with the frozen refresh event.
type RunObserver interface {
	ObserveRun(event domain.RefreshEvent)
}

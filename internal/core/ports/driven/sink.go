package driven

import (
	"context"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// DeliverySink posts a rendered brief to one destination.
// A sink makes exactly one attempt per call; retries belong to the scheduler.
type DeliverySink interface {
	// Name identifies the sink in logs and results (e.g. "webhook").
	Name() string

	// Recipient is the destination identifier recorded on the result.
	Recipient() string

	// Post sends msg. A nil error means the destination accepted it;
	// detail is a short human-readable status either way.
	Post(ctx context.Context, msg domain.Message) (detail string, err error)
}

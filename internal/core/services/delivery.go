package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// PrimarySubject is the subject sent with the primary delivery.
const PrimarySubject = "Daily Flight Deck"

// Dispatcher posts a brief to the primary sink, falling back once on failure.
type Dispatcher struct {
	primary  driven.DeliverySink
	fallback driven.DeliverySink
	subject  string
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher. Either sink may be nil, which counts
// as a failed attempt. subject is the fixed fallback subject; timeout bounds
// each attempt when positive.
func NewDispatcher(primary, fallback driven.DeliverySink, subject string, timeout time.Duration) *Dispatcher {
	if subject == "" {
		subject = domain.DefaultFallbackSubject
	}
	return &Dispatcher{
		primary:  primary,
		fallback: fallback,
		subject:  subject,
		timeout:  timeout,
	}
}

// Deliver attempts the primary sink once and, only if it fails, the fallback
// sink once. It never returns an error; failures are recorded on the result.
func (d *Dispatcher) Deliver(ctx context.Context, text string) domain.DeliveryResult {
	result := domain.DeliveryResult{
		PrimaryStatus:  domain.SinkFailed,
		FallbackStatus: domain.SinkNotAttempted,
	}

	detail, err := d.attempt(ctx, d.primary, domain.Message{Subject: PrimarySubject, Body: text})
	result.PrimaryDetail = detail
	if err == nil {
		result.PrimaryStatus = domain.SinkOK
		result.Recipient = d.primary.Recipient()
		logger.Info("Brief delivered via %s", d.primary.Name())
		return result
	}
	logger.Warn("primary delivery failed: %v", err)

	detail, err = d.attempt(ctx, d.fallback, domain.Message{Subject: d.subject, Body: text})
	result.FallbackDetail = detail
	if d.fallback != nil {
		result.Recipient = d.fallback.Recipient()
	}
	if err != nil {
		result.FallbackStatus = domain.SinkFailed
		logger.Warn("fallback delivery failed: %v", err)
		return result
	}
	result.FallbackStatus = domain.SinkOK
	logger.Info("Brief delivered via fallback %s", d.fallback.Name())
	return result
}

func (d *Dispatcher) attempt(ctx context.Context, sink driven.DeliverySink, msg domain.Message) (string, error) {
	if sink == nil {
		return domain.ErrSinkNotConfigured.Error(), domain.ErrSinkNotConfigured
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	detail, err := sink.Post(ctx, msg)
	if err != nil {
		if detail == "" {
			detail = err.Error()
		}
		return detail, fmt.Errorf("%w: %s: %w", domain.ErrDeliveryFailed, sink.Name(), err)
	}
	return detail, nil
}

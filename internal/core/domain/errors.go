package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source, sink or fetcher kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRunInProgress indicates a pipeline run is already active.
	ErrRunInProgress = errors.New("run in progress")

	// ErrInvalidTransition indicates the refresh tracker was asked to move
	// to a state that does not follow its current one.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrRunNotTerminal indicates a refresh event was frozen before the run
	// reached delivered, failed or empty_guard_blocked.
	ErrRunNotTerminal = errors.New("run has not reached a terminal state")

	// Pipeline errors. Each maps to an ErrorKind recorded on the refresh event.

	// ErrAdapterUnavailable indicates a source tool could not be reached.
	ErrAdapterUnavailable = errors.New("source adapter unavailable")

	// ErrAllAdaptersUnavailable indicates every source fetch failed.
	// Unlike a single unavailable adapter this fails the run.
	ErrAllAdaptersUnavailable = errors.New("all source adapters unavailable")

	// ErrEmptySnapshot indicates every source returned zero raw rows and
	// the empty-snapshot override was not set.
	ErrEmptySnapshot = errors.New("empty snapshot blocked")

	// ErrSyntheticSnapshot indicates a live fetch returned example-domain content.
	ErrSyntheticSnapshot = errors.New("synthetic snapshot content")

	// ErrDeliveryFailed indicates a delivery sink was unreachable or rejected the brief.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrFatalPipeline indicates a stage failed for a reason unrelated to
	// sources, normalisation or delivery.
	ErrFatalPipeline = errors.New("fatal pipeline error")

	// ErrSinkNotConfigured indicates a delivery sink has no destination.
	ErrSinkNotConfigured = errors.New("delivery sink not configured")
)

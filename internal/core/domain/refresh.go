package domain

import "time"

// RunState is a refresh tracker state.
type RunState string

// Tracker states. The happy path is linear from Started to Delivered;
// Failed and EmptyGuardBlocked are escape states.
const (
	StateStarted           RunState = "started"
	StateFetching          RunState = "fetching"
	StateNormalized        RunState = "normalized"
	StateScored            RunState = "scored"
	StateRendered          RunState = "rendered"
	StateDelivered         RunState = "delivered"
	StateFailed            RunState = "failed"
	StateEmptyGuardBlocked RunState = "empty_guard_blocked"
)

// IsTerminal returns true for states that end a run.
func (s RunState) IsTerminal() bool {
	return s == StateDelivered || s == StateFailed || s == StateEmptyGuardBlocked
}

// Next returns the state that follows s on the happy path.
// Terminal states have no successor.
func (s RunState) Next() (RunState, bool) {
	switch s {
	case StateStarted:
		return StateFetching, true
	case StateFetching:
		return StateNormalized, true
	case StateNormalized:
		return StateScored, true
	case StateScored:
		return StateRendered, true
	case StateRendered:
		return StateDelivered, true
	default:
		return "", false
	}
}

// RunStatus is the terminal status persisted with a refresh event.
type RunStatus string

// Terminal statuses.
const (
	StatusOK                RunStatus = "ok"
	StatusFailed            RunStatus = "failed"
	StatusEmptyGuardBlocked RunStatus = "empty_guard_blocked"
)

// StatusFor maps a terminal state to its persisted status.
func StatusFor(s RunState) RunStatus {
	switch s {
	case StateDelivered:
		return StatusOK
	case StateEmptyGuardBlocked:
		return StatusEmptyGuardBlocked
	default:
		return StatusFailed
	}
}

// ErrorKind classifies what went wrong during a run.
type ErrorKind string

// Error taxonomy recorded on refresh events and named in status summaries.
const (
	ErrorKindAdapterUnavailable   ErrorKind = "adapter_unavailable"
	ErrorKindNormalizationDrop    ErrorKind = "normalization_drop"
	ErrorKindEmptySnapshotBlocked ErrorKind = "empty_snapshot_blocked"
	ErrorKindDeliveryFailure      ErrorKind = "delivery_failure"
	ErrorKindFatalPipeline        ErrorKind = "fatal_pipeline_error"
)

// Trigger records what started a run.
type Trigger string

// Run triggers.
const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// SourceCounts tracks how many rows survived each stage for one source.
type SourceCounts struct {
	// Raw is the number of rows the adapter returned.
	Raw int `json:"raw_count"`

	// Dropped is rows lost to missing required fields.
	Dropped int `json:"dropped_count"`

	// OutOfScope is rows outside the channel allowlist or time window.
	OutOfScope int `json:"out_of_scope_count"`

	// InScope is the post-dedup, pre-scoring count.
	InScope int `json:"in_scope_count"`

	// Actionable is the number of items appearing in any rendered section.
	Actionable int `json:"actionable_count"`
}

// RefreshEvent is the immutable record of one pipeline run.
type RefreshEvent struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Trigger is manual or scheduled.
	Trigger Trigger `json:"trigger"`

	// FetchMode is live or fixture.
	FetchMode FetchMode `json:"fetch_mode"`

	// Counts holds per-source stage counts.
	Counts map[Source]SourceCounts `json:"counts"`

	// State is the terminal tracker state.
	State RunState `json:"state"`

	// Status is derived from State.
	Status RunStatus `json:"status"`

	// ErrorDetail joins diagnostics and failure messages.
	ErrorDetail string `json:"error_detail,omitempty"`

	// Errors lists every taxonomy kind that occurred.
	Errors []ErrorKind `json:"errors,omitempty"`

	// ChannelStats summarises raw chat rows by channel.
	ChannelStats *ChannelStats `json:"channel_stats,omitempty"`

	// Delivery is set once the dispatcher has run.
	Delivery *DeliveryResult `json:"delivery,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// HasError reports whether kind occurred during the run.
func (e *RefreshEvent) HasError(kind ErrorKind) bool {
	for _, k := range e.Errors {
		if k == kind {
			return true
		}
	}
	return false
}

// ChannelCount is one entry of the chat channel histogram.
type ChannelCount struct {
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

// ChannelStats summarises raw chat rows by channel.
type ChannelStats struct {
	InScope     int            `json:"in_scope_count"`
	Unknown     int            `json:"unknown_channel_count"`
	TopChannels []ChannelCount `json:"top_channels"`
}

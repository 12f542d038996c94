package domain

// SinkStatus is the outcome of one delivery attempt.
type SinkStatus string

// Sink statuses. NotAttempted applies only to the fallback sink.
const (
	SinkOK           SinkStatus = "ok"
	SinkFailed       SinkStatus = "failed"
	SinkNotAttempted SinkStatus = "not_attempted"
)

// DeliveryResult is produced once per run after the brief is finalised.
type DeliveryResult struct {
	// PrimaryStatus is ok or failed.
	PrimaryStatus SinkStatus `json:"primary_status"`

	// FallbackStatus is not_attempted, ok or failed.
	FallbackStatus SinkStatus `json:"fallback_status"`

	// Recipient is the destination that received (or last attempted) the brief.
	Recipient string `json:"recipient"`

	// PrimaryDetail is the primary sink's response or error text.
	PrimaryDetail string `json:"primary_detail,omitempty"`

	// FallbackDetail is the fallback sink's response or error text.
	FallbackDetail string `json:"fallback_detail,omitempty"`
}

// Delivered reports whether any sink accepted the brief.
func (r DeliveryResult) Delivered() bool {
	return r.PrimaryStatus == SinkOK || r.FallbackStatus == SinkOK
}

// Message is what a sink posts.
type Message struct {
	// Subject is used by sinks that carry one (email, files).
	Subject string

	// Body is the rendered brief text.
	Body string
}

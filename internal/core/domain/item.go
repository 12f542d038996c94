package domain

import "time"

// Urgency signal tags attached to items by the normalisers.
const (
	SignalDirectRequest     = "direct_request"
	SignalUnansweredRequest = "unanswered_action_request"
	SignalUrgentKeyword     = "urgent_keyword"
	SignalEscalation        = "escalation"
	SignalIncident          = "incident"
	SignalUrgent            = "urgent"
	SignalLowSignal         = "low_signal"
	SignalMeetingWithin2h   = "meeting_within_2h"
)

// Item is a normalised unit of actionable content derived from exactly one raw row.
type Item struct {
	// Source is the adapter the row came from.
	Source Source

	// IDOrURL identifies the row within its source.
	IDOrURL string

	// URL is the link rendered in the brief. May be empty.
	URL string

	// ChannelOrSender is the chat channel, email sender or "calendar".
	ChannelOrSender string

	// Title is the one-line heading.
	Title string

	// Snippet is the full detail text. It is never truncated or redacted.
	Snippet string

	// Timestamp is when the row happened, as an absolute instant.
	Timestamp time.Time

	// DueAt is the due time or meeting start, when known.
	DueAt *time.Time

	// EndsAt is the end of a calendar item's window, when known.
	EndsAt *time.Time

	// UrgencySignals are tag strings with set semantics.
	UrgencySignals []string

	// RecommendedAction is a human-readable suggestion.
	RecommendedAction string

	// Score is computed by the scorer and not modified elsewhere.
	Score int

	// ScoreReasons explains each rubric delta that applied.
	ScoreReasons []string

	// DedupKey is the identity used by the deduplicator.
	DedupKey string

	// Metadata holds source-specific extras (author, labels).
	Metadata map[string]string
}

// Key returns the identity of the item across the whole run.
func (i *Item) Key() string {
	return string(i.Source) + "|" + i.IDOrURL
}

// HasSignal reports whether tag is among the item's urgency signals.
func (i *Item) HasSignal(tag string) bool {
	for _, s := range i.UrgencySignals {
		if s == tag {
			return true
		}
	}
	return false
}

// HasAnySignal reports whether any of tags is among the item's urgency signals.
func (i *Item) HasAnySignal(tags ...string) bool {
	for _, tag := range tags {
		if i.HasSignal(tag) {
			return true
		}
	}
	return false
}

// DueWithin reports whether the item's due time falls in [now, now+d].
func (i *Item) DueWithin(now time.Time, d time.Duration) bool {
	if i.DueAt == nil {
		return false
	}
	due := *i.DueAt
	return !due.Before(now) && !due.After(now.Add(d))
}

// Window returns the item's time window for overlap checks.
// Items without an end time have a zero-length window at their due time
// (or timestamp).
func (i *Item) Window() (start, end time.Time) {
	start = i.Timestamp
	if i.DueAt != nil {
		start = *i.DueAt
	}
	end = start
	if i.EndsAt != nil && i.EndsAt.After(start) {
		end = *i.EndsAt
	}
	return start, end
}

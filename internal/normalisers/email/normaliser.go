// Package email normalises inbox messages into items.
package email

import (
	"strings"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/normalisers/signals"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	noSubject     = "(no subject)"
	unknownSender = "unknown"
	actionDefer   = "Defer unless this affects today."
	actionReply   = "Reply with owner, next step, and ETA."
	actionReview  = "Review and decide follow-up."
)

// Normaliser handles email rows.
type Normaliser struct {
	lookback time.Duration
	detector signals.Detector
}

// New creates an email normaliser admitting messages newer than lookbackHours.
// Zero disables the lookback bound.
func New(lookbackHours int, handles []string) *Normaliser {
	return &Normaliser{
		lookback: time.Duration(lookbackHours) * time.Hour,
		detector: signals.Detector{Handles: handles},
	}
}

// Source returns domain.SourceEmail.
func (n *Normaliser) Source() domain.Source {
	return domain.SourceEmail
}

// Normalise maps email rows to items.
func (n *Normaliser) Normalise(rows []domain.RawRow, now time.Time) driven.NormaliseResult {
	var result driven.NormaliseResult
	for _, row := range rows {
		id := row.FirstString("id", "message_id")
		ts, ok := signals.ParseTimestamp(row["email_ts"])
		if id == "" || !ok {
			result.Dropped++
			continue
		}
		if n.lookback > 0 && ts.Before(now.Add(-n.lookback)) {
			result.OutOfScope++
			continue
		}

		subject := row.String("subject")
		if subject == "" {
			subject = noSubject
		}
		sender := row.FirstString("from_", "from")
		if sender == "" {
			sender = unknownSender
		}
		snippet := row.String("snippet")
		labels := row.Strings("labels")

		text := strings.Join([]string{subject, snippet, sender, strings.Join(labels, " ")}, "\n")
		tags := n.detector.EmailSignals(text, hasLabel(labels, signals.PromotionsLabel))

		item := domain.Item{
			Source:            domain.SourceEmail,
			IDOrURL:           id,
			URL:               row.String("display_url"),
			ChannelOrSender:   sender,
			Title:             subject,
			Snippet:           snippet,
			Timestamp:         ts,
			UrgencySignals:    tags,
			RecommendedAction: recommend(tags),
			DedupKey:          id,
			Metadata: map[string]string{
				"labels": strings.Join(labels, ","),
			},
		}
		if due, ok := signals.ParseTimestamp(row["due_at"]); ok {
			item.DueAt = &due
		}
		if row.String("has_attachment") == "true" {
			item.Metadata["has_attachment"] = "true"
		}
		result.Items = append(result.Items, item)
	}
	return result
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

func recommend(tags []string) string {
	item := domain.Item{UrgencySignals: tags}
	switch {
	case item.HasSignal(domain.SignalLowSignal):
		return actionDefer
	case item.HasSignal(domain.SignalDirectRequest):
		return actionReply
	default:
		return actionReview
	}
}

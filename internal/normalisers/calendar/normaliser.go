// Package calendar normalises calendar events into items.
package calendar

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
	defaultTitle   = "Calendar event"
	noDescription  = "No description"
	actionPrepNow  = "Prep talking points/docs and confirm agenda now."
	actionConfirm  = "Confirm prep materials and attendee expectations."
	soonWindow     = 2 * time.Hour
	channelDisplay = "calendar"
)

// Normaliser handles calendar rows.
type Normaliser struct {
	lookahead time.Duration
}

// New creates a calendar normaliser admitting events that start within
// lookaheadHours of now. Zero disables the upper bound.
func New(lookaheadHours int) *Normaliser {
	return &Normaliser{lookahead: time.Duration(lookaheadHours) * time.Hour}
}

// Source returns domain.SourceCalendar.
func (n *Normaliser) Source() domain.Source {
	return domain.SourceCalendar
}

// Normalise maps calendar rows to items. Events that already started are out of scope.
func (n *Normaliser) Normalise(rows []domain.RawRow, now time.Time) driven.NormaliseResult {
	var result driven.NormaliseResult
	for _, row := range rows {
		title := strings.TrimSpace(row.String("summary"))
		id := row.FirstString("id", "event_id")
		if id == "" {
			id = title
		}
		start, ok := signals.ParseTimestamp(row["start"])
		if id == "" || !ok {
			result.Dropped++
			continue
		}
		if start.Before(now) || (n.lookahead > 0 && start.After(now.Add(n.lookahead))) {
			result.OutOfScope++
			continue
		}

		if title == "" {
			title = defaultTitle
		}
		description := row.String("description")
		if strings.TrimSpace(description) == "" {
			description = noDescription
		}

		item := domain.Item{
			Source:            domain.SourceCalendar,
			IDOrURL:           id,
			URL:               row.FirstString("display_url", "url", "html_link"),
			ChannelOrSender:   channelDisplay,
			Title:             title,
			Snippet:           description,
			Timestamp:         start,
			DueAt:             &start,
			RecommendedAction: actionConfirm,
			DedupKey:          id,
			Metadata:          map[string]string{},
		}
		if end, ok := signals.ParseTimestamp(row["end"]); ok {
			item.EndsAt = &end
		}
		if loc := row.String("location"); loc != "" {
			item.Metadata["location"] = loc
		}
		if !start.After(now.Add(soonWindow)) {
			item.UrgencySignals = append(item.UrgencySignals, domain.SignalMeetingWithin2h)
			item.RecommendedAction = actionPrepNow
		}
		result.Items = append(result.Items, item)
	}
	return result
}

package calendar

import (
	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

const statusCancelled = "cancelled"

// EventToRow converts a Google Calendar event to a raw calendar row.
func EventToRow(event *calendar.Event, calendarID string) domain.RawRow {
	row := domain.RawRow{
		"id":          event.Id,
		"calendar_id": calendarID,
		"summary":     event.Summary,
		"description": event.Description,
		"location":    event.Location,
		"status":      event.Status,
		"html_link":   event.HtmlLink,
		"start":       eventTime(event.Start),
		"end":         eventTime(event.End),
	}
	if event.Organizer != nil { //nolint:misspell // Google API field name
		row["organizer"] = event.Organizer.Email //nolint:misspell // Google API field name
	}
	if attendees := attendeeNames(event.Attendees); len(attendees) > 0 {
		row["attendees"] = attendees
	}
	return row
}

// eventTime returns the timed start or end, or the date for all-day events.
func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

func attendeeNames(attendees []*calendar.EventAttendee) []string {
	var names []string
	for _, a := range attendees {
		switch {
		case a.DisplayName != "":
			names = append(names, a.DisplayName)
		case a.Email != "":
			names = append(names, a.Email)
		}
	}
	return names
}

// ShouldInclude reports whether an event belongs in the snapshot.
// Cancelled instances and events the user declined are skipped.
func ShouldInclude(event *calendar.Event) bool {
	if event == nil || event.Id == "" || event.Status == statusCancelled {
		return false
	}
	for _, a := range event.Attendees {
		if a.Self && a.ResponseStatus == "declined" {
			return false
		}
	}
	return true
}

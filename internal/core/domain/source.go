package domain

import "fmt"

// Source identifies one of the three message sources a brief is built from.
type Source string

// Available sources.
const (
	// SourceChat is team chat (channel messages and mentions).
	SourceChat Source = "chat"

	// SourceCalendar is the user's calendar.
	SourceCalendar Source = "calendar"

	// SourceEmail is the user's inbox.
	SourceEmail Source = "email"
)

// AllSources returns every source in canonical order.
func AllSources() []Source {
	return []Source{SourceChat, SourceCalendar, SourceEmail}
}

// IsValid returns true if the source is recognised.
func (s Source) IsValid() bool {
	switch s {
	case SourceChat, SourceCalendar, SourceEmail:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Source) String() string {
	return string(s)
}

// ParseSource converts a string to a Source.
// The original adapter names (slack, gmail) are accepted as aliases.
func ParseSource(s string) (Source, error) {
	switch s {
	case "chat", "slack":
		return SourceChat, nil
	case "calendar", "google_calendar":
		return SourceCalendar, nil
	case "email", "gmail":
		return SourceEmail, nil
	default:
		return "", fmt.Errorf("%w: source %q", ErrUnsupportedType, s)
	}
}

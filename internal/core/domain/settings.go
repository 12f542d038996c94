package domain

import (
	"strings"
	"time"
)

// DefaultLowPriorityThreshold is the score below which items are deferred.
// With the default of 1, zero and negative scores land in Deferred / Low Priority.
const DefaultLowPriorityThreshold = 1

// FallbackKind selects the fallback delivery sink.
type FallbackKind string

// Available fallback sinks.
const (
	// FallbackGmail sends the brief as an email through the Gmail API.
	FallbackGmail FallbackKind = "gmail"

	// FallbackFile writes the brief to an outbox directory.
	FallbackFile FallbackKind = "file"
)

// IsValid returns true if the fallback kind is recognised.
func (k FallbackKind) IsValid() bool {
	return k == FallbackGmail || k == FallbackFile
}

// ChatSettings scopes the chat source.
type ChatSettings struct {
	// ChannelsExact are channel names admitted as-is.
	ChannelsExact []string

	// ChannelsPrefix admits any channel starting with one of these.
	ChannelsPrefix []string

	// LookbackHours excludes messages older than now minus this window.
	LookbackHours int

	// ExportFile is a chat export read in live mode.
	ExportFile string
}

// NormalizeChannelName lower-cases a channel name and strips a leading '#'.
func NormalizeChannelName(name string) string {
	text := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(text, "#")
}

// InScope reports whether channel passes the allowlist.
// An allowlist with no exact names and no prefixes admits every channel.
func (c ChatSettings) InScope(channel string) bool {
	if len(c.ChannelsExact) == 0 && len(c.ChannelsPrefix) == 0 {
		return true
	}
	normalized := NormalizeChannelName(channel)
	for _, exact := range c.ChannelsExact {
		if NormalizeChannelName(exact) == normalized {
			return true
		}
	}
	for _, prefix := range c.ChannelsPrefix {
		if p := NormalizeChannelName(prefix); p != "" && strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}

// EmailSettings scopes the email source.
type EmailSettings struct {
	// LookbackHours excludes messages older than now minus this window.
	LookbackHours int

	// User is the Gmail user ID ("me" for the token owner).
	User string

	// Query is an optional Gmail search query.
	Query string
}

// CalendarSettings scopes the calendar source.
type CalendarSettings struct {
	// LookaheadHours excludes events starting after now plus this window.
	LookaheadHours int

	// CalendarID is the Google calendar to read.
	CalendarID string
}

// BriefSettings controls assembly.
type BriefSettings struct {
	// LowPriorityThreshold defers items scoring below it.
	LowPriorityThreshold int

	// AllowEmptySnapshot overrides the empty-snapshot guard.
	AllowEmptySnapshot bool
}

// FallbackSettings configures the fallback sink.
type FallbackSettings struct {
	Kind      FallbackKind
	Recipient string
	Subject   string
	OutboxDir string
}

// DeliverySettings configures both sinks.
type DeliverySettings struct {
	// WebhookURL is the primary sink.
	WebhookURL string

	// Timeout bounds each sink attempt.
	Timeout time.Duration

	Fallback FallbackSettings
}

// IdentitySettings names the user for direct-request detection.
type IdentitySettings struct {
	// Handles are mentions that address the user (e.g. "@sam").
	Handles []string
}

// GoogleSettings configures live calendar and email fetch.
type GoogleSettings struct {
	// TokenFile holds an OAuth2 token as JSON. Empty disables live Google fetch.
	TokenFile string
}

// StorageSettings configures the run log.
type StorageSettings struct {
	DataDir       string
	RetentionDays int
}

// ServeSettings configures the scheduler loop.
type ServeSettings struct {
	Interval    time.Duration
	MetricsAddr string
}

// Settings is the resolved flight deck configuration.
type Settings struct {
	Chat     ChatSettings
	Email    EmailSettings
	Calendar CalendarSettings
	Brief    BriefSettings
	Delivery DeliverySettings
	Google   GoogleSettings
	Storage  StorageSettings
	Serve    ServeSettings
	Identity IdentitySettings

	// AuditRecentEvents is how many refresh events the audit inspects.
	AuditRecentEvents int
}

// DefaultFallbackSubject is used when no fallback subject is configured.
const DefaultFallbackSubject = "Daily Flight Deck (fallback delivery)"

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Chat:     ChatSettings{LookbackHours: 24},
		Email:    EmailSettings{LookbackHours: 24, User: "me"},
		Calendar: CalendarSettings{LookaheadHours: 24, CalendarID: "primary"},
		Brief:    BriefSettings{LowPriorityThreshold: DefaultLowPriorityThreshold},
		Delivery: DeliverySettings{
			Timeout: 10 * time.Second,
			Fallback: FallbackSettings{
				Kind:    FallbackFile,
				Subject: DefaultFallbackSubject,
			},
		},
		Storage: StorageSettings{RetentionDays: 30},
		Serve: ServeSettings{
			Interval:    time.Hour,
			MetricsAddr: "127.0.0.1:9464",
		},
		AuditRecentEvents: 5,
	}
}

package signals

import (
	"strings"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// Keyword markers, matched case-insensitively as substrings.
var (
	urgentMarkers = []string{
		"urgent", "asap", "critical", "incident", "sev", "outage", "escalation", "blocker",
	}
	directRequestMarkers = []string{"can you", "could you", "please"}
	lowSignalMarkers     = []string{
		"promotion", "reactivation", "bonus", "sale", "unsubscribe", "newsletter",
	}
	chatActionVerbs  = []string{"need", "can", "please", "help", "review"}
	emailActionVerbs = []string{"need", "can", "please", "review", "action"}
)

// PromotionsLabel is the Gmail category label for promotional mail.
const PromotionsLabel = "CATEGORY_PROMOTIONS"

// ContainsAny reports whether text contains any marker, ignoring case.
func ContainsAny(text string, markers []string) bool {
	lowered := strings.ToLower(text)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Detector tags text with urgency signals.
type Detector struct {
	// Handles are extra direct-request markers naming the user (e.g. "@sam").
	Handles []string
}

// IsDirectRequest reports whether text asks the user for something.
func (d Detector) IsDirectRequest(text string) bool {
	return ContainsAny(text, directRequestMarkers) || ContainsAny(text, d.Handles)
}

// IsUrgent reports whether text carries an escalation or incident marker.
func IsUrgent(text string) bool {
	return ContainsAny(text, urgentMarkers)
}

// IsLowSignal reports whether text matches a promotional pattern.
func IsLowSignal(text string) bool {
	return ContainsAny(text, lowSignalMarkers)
}

// ChatSignals returns the urgency tags for a chat message.
func (d Detector) ChatSignals(text string) []string {
	return d.tag(text, chatActionVerbs)
}

// EmailSignals returns the urgency tags for an email.
// promotional forces the low-signal tag (e.g. a Gmail promotions label).
func (d Detector) EmailSignals(text string, promotional bool) []string {
	tags := d.tag(text, emailActionVerbs)
	if promotional || IsLowSignal(text) {
		tags = append(tags, domain.SignalLowSignal)
	}
	return tags
}

func (d Detector) tag(text string, actionVerbs []string) []string {
	var tags []string
	if d.IsDirectRequest(text) {
		tags = append(tags, domain.SignalDirectRequest)
	}
	if IsUrgent(text) {
		tags = append(tags, domain.SignalUrgentKeyword)
	}
	if strings.Contains(text, "?") && ContainsAny(text, actionVerbs) {
		tags = append(tags, domain.SignalUnansweredRequest)
	}
	return tags
}

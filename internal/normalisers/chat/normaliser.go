// Package chat normalises chat search results (channel messages) into items.
package chat

import (
	"strings"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/normalisers/signals"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.Normaliser           = (*Normaliser)(nil)
	_ driven.ChannelStatsProvider = (*Normaliser)(nil)
)

// Recommended actions, most specific first.
const (
	actionReply  = "Reply in thread with next step and ETA."
	actionTriage = "Acknowledge in channel and triage owner/ETA."
	actionReview = "Review thread and decide if action is needed."
)

// Normaliser handles chat rows.
type Normaliser struct {
	scope    domain.ChatSettings
	detector signals.Detector
}

// New creates a chat normaliser scoped by the channel allowlist and lookback.
func New(scope domain.ChatSettings, handles []string) *Normaliser {
	return &Normaliser{
		scope:    scope,
		detector: signals.Detector{Handles: handles},
	}
}

// Source returns domain.SourceChat.
func (n *Normaliser) Source() domain.Source {
	return domain.SourceChat
}

// Normalise maps chat rows to items.
func (n *Normaliser) Normalise(rows []domain.RawRow, now time.Time) driven.NormaliseResult {
	var result driven.NormaliseResult
	var minTime time.Time
	if n.scope.LookbackHours > 0 {
		minTime = now.Add(-time.Duration(n.scope.LookbackHours) * time.Hour)
	}

	for _, row := range rows {
		id := Identity(row)
		ts, ok := signals.ParseTimestamp(row["message_ts"])
		if id == "" || !ok {
			result.Dropped++
			continue
		}

		channel := Channel(row)
		if channel == "" || !n.scope.InScope(channel) {
			result.OutOfScope++
			continue
		}
		if !minTime.IsZero() && ts.Before(minTime) {
			result.OutOfScope++
			continue
		}

		text := row.String("text")
		tags := n.detector.ChatSignals(text)

		item := domain.Item{
			Source:            domain.SourceChat,
			IDOrURL:           id,
			URL:               row.FirstString("display_url", "web_link"),
			ChannelOrSender:   domain.NormalizeChannelName(channel),
			Title:             "#" + domain.NormalizeChannelName(channel),
			Snippet:           text,
			Timestamp:         ts,
			UrgencySignals:    tags,
			RecommendedAction: recommend(tags),
			DedupKey:          DedupKey(row),
			Metadata: map[string]string{
				"author": row.FirstString("author_display_name", "author_username"),
			},
		}
		if due, ok := signals.ParseTimestamp(row["due_at"]); ok {
			item.DueAt = &due
		}
		result.Items = append(result.Items, item)
	}
	return result
}

// ChannelStats summarises rows against the normaliser's allowlist.
func (n *Normaliser) ChannelStats(rows []domain.RawRow) domain.ChannelStats {
	return ChannelStats(rows, n.scope, DefaultTopChannels)
}

// DedupKey returns the identity of a chat row: message_info_str when present,
// otherwise the (web_link, message_ts) pair.
func DedupKey(row domain.RawRow) string {
	if info := row.String("message_info_str"); info != "" {
		return info
	}
	return row.String("web_link") + "\x00" + row.String("message_ts")
}

// Identity returns the row's id_or_url. Rows without message_info_str are
// identified by web_link and message_ts together, so two messages sharing a
// permalink but not a timestamp stay distinct.
func Identity(row domain.RawRow) string {
	if info := row.String("message_info_str"); info != "" {
		return info
	}
	link := row.String("web_link")
	if link == "" {
		return ""
	}
	if ts := row.String("message_ts"); ts != "" {
		return link + "@" + ts
	}
	return link
}

// Channel extracts the channel name from channel_name or a "#name" display title.
func Channel(row domain.RawRow) string {
	if channel := strings.TrimSpace(row.String("channel_name")); channel != "" {
		return channel
	}
	title := strings.TrimSpace(row.String("display_title"))
	if strings.HasPrefix(title, "#") {
		return title[1:]
	}
	return ""
}

func recommend(tags []string) string {
	item := domain.Item{UrgencySignals: tags}
	switch {
	case item.HasSignal(domain.SignalDirectRequest):
		return actionReply
	case item.HasSignal(domain.SignalUrgentKeyword):
		return actionTriage
	default:
		return actionReview
	}
}

package mcp

import (
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// EventOutput is a refresh event with timestamps rendered as RFC 3339.
type EventOutput struct {
	RunID       string                  `json:"run_id"`
	Trigger     string                  `json:"trigger"`
	FetchMode   string                  `json:"fetch_mode"`
	State       string                  `json:"state"`
	Status      string                  `json:"status"`
	ErrorDetail string                  `json:"error_detail,omitempty"`
	Errors      []string                `json:"errors,omitempty"`
	Counts      map[string]CountsOutput `json:"counts"`
	Delivery    *DeliveryOutput         `json:"delivery,omitempty"`
	StartedAt   string                  `json:"started_at"`
	CompletedAt string                  `json:"completed_at"`
}

// CountsOutput mirrors domain.SourceCounts.
type CountsOutput struct {
	Raw        int `json:"raw_count"`
	Dropped    int `json:"dropped_count"`
	OutOfScope int `json:"out_of_scope_count"`
	InScope    int `json:"in_scope_count"`
	Actionable int `json:"actionable_count"`
}

// DeliveryOutput mirrors domain.DeliveryResult.
type DeliveryOutput struct {
	PrimaryStatus  string `json:"primary_status"`
	FallbackStatus string `json:"fallback_status"`
	Recipient      string `json:"recipient"`
}

// ItemOutput is a ranked brief item.
type ItemOutput struct {
	Source            string   `json:"source"`
	ID                string   `json:"id_or_url"`
	Title             string   `json:"title"`
	URL               string   `json:"url,omitempty"`
	Score             int      `json:"score"`
	ScoreReasons      []string `json:"score_reasons,omitempty"`
	UrgencySignals    []string `json:"urgency_signals,omitempty"`
	RecommendedAction string   `json:"recommended_action"`
}

// SectionOutput is one named brief section.
type SectionOutput struct {
	Name  string       `json:"name"`
	Items []ItemOutput `json:"items"`
}

func toEventOutput(e *domain.RefreshEvent) EventOutput {
	out := EventOutput{
		RunID:       e.RunID,
		Trigger:     string(e.Trigger),
		FetchMode:   string(e.FetchMode),
		State:       string(e.State),
		Status:      string(e.Status),
		ErrorDetail: e.ErrorDetail,
		Counts:      make(map[string]CountsOutput, len(e.Counts)),
		StartedAt:   formatTime(e.StartedAt),
		CompletedAt: formatTime(e.CompletedAt),
	}
	for _, k := range e.Errors {
		out.Errors = append(out.Errors, string(k))
	}
	for src, c := range e.Counts {
		out.Counts[string(src)] = CountsOutput(c)
	}
	if d := e.Delivery; d != nil {
		out.Delivery = &DeliveryOutput{
			PrimaryStatus:  string(d.PrimaryStatus),
			FallbackStatus: string(d.FallbackStatus),
			Recipient:      d.Recipient,
		}
	}
	return out
}

func toItemOutputs(items []domain.Item) []ItemOutput {
	out := make([]ItemOutput, len(items))
	for i := range items {
		out[i] = ItemOutput{
			Source:            string(items[i].Source),
			ID:                items[i].IDOrURL,
			Title:             items[i].Title,
			URL:               items[i].URL,
			Score:             items[i].Score,
			ScoreReasons:      items[i].ScoreReasons,
			UrgencySignals:    items[i].UrgencySignals,
			RecommendedAction: items[i].RecommendedAction,
		}
	}
	return out
}

func toSectionOutputs(s *domain.Sections) []SectionOutput {
	ordered := s.Ordered()
	out := make([]SectionOutput, len(ordered))
	for i, sec := range ordered {
		out[i] = SectionOutput{Name: sec.Name, Items: toItemOutputs(sec.Items)}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// Rubric deltas.
const (
	ScoreDueSoon         = 50
	ScoreDirectRequest   = 35
	ScoreUrgencyMarker   = 25
	ScoreUnansweredAsk   = 20
	ScoreLowSignalOffset = -20

	// TimeCriticalWindow is how far ahead of now a due time counts as imminent.
	TimeCriticalWindow = 2 * time.Hour
)

var urgencyMarkers = []string{
	domain.SignalUrgentKeyword,
	domain.SignalEscalation,
	domain.SignalIncident,
	domain.SignalUrgent,
}

type rule struct {
	delta  int
	reason string
	match  func(item *domain.Item, now time.Time) bool
}

var rubric = []rule{
	{ScoreDueSoon, "due within 2h", func(item *domain.Item, now time.Time) bool {
		return item.DueWithin(now, TimeCriticalWindow)
	}},
	{ScoreDirectRequest, "direct request", func(item *domain.Item, _ time.Time) bool {
		return item.HasSignal(domain.SignalDirectRequest)
	}},
	{ScoreUrgencyMarker, "escalation/urgent marker", func(item *domain.Item, _ time.Time) bool {
		return item.HasAnySignal(urgencyMarkers...)
	}},
	{ScoreUnansweredAsk, "unanswered action request", func(item *domain.Item, _ time.Time) bool {
		return item.HasSignal(domain.SignalUnansweredRequest)
	}},
	{ScoreLowSignalOffset, "low signal/promotion", func(item *domain.Item, _ time.Time) bool {
		return item.HasSignal(domain.SignalLowSignal)
	}},
}

// Score sums every rubric delta that applies to item at now.
// Unknown signals contribute nothing; the result may be negative.
func Score(item domain.Item, now time.Time) int {
	score, _ := evaluate(&item, now)
	return score
}

// ScoreAll returns copies of items with Score and ScoreReasons set.
func ScoreAll(items []domain.Item, now time.Time) []domain.Item {
	out := make([]domain.Item, len(items))
	for i := range items {
		out[i] = items[i]
		out[i].Score, out[i].ScoreReasons = evaluate(&out[i], now)
	}
	return out
}

func evaluate(item *domain.Item, now time.Time) (int, []string) {
	score := 0
	var reasons []string
	for _, r := range rubric {
		if !r.match(item, now) {
			continue
		}
		score += r.delta
		reasons = append(reasons, fmt.Sprintf("%+d %s", r.delta, r.reason))
	}
	return score, reasons
}

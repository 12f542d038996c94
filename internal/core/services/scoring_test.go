package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

func TestScore_Rubric(t *testing.T) {
	tests := []struct {
		name  string
		item  domain.Item
		score int
	}{
		{"no signals", newItem(domain.SourceChat, "1"), 0},
		{"direct request", newItem(domain.SourceChat, "1", domain.SignalDirectRequest), 35},
		{"urgent keyword", newItem(domain.SourceChat, "1", domain.SignalUrgentKeyword), 25},
		{"incident marker", newItem(domain.SourceChat, "1", domain.SignalIncident), 25},
		{"two urgency markers count once", newItem(domain.SourceChat, "1",
			domain.SignalEscalation, domain.SignalUrgent), 25},
		{"unanswered request", newItem(domain.SourceChat, "1", domain.SignalUnansweredRequest), 20},
		{"low signal", newItem(domain.SourceEmail, "1", domain.SignalLowSignal), -20},
		{"direct and unanswered stack", newItem(domain.SourceChat, "1",
			domain.SignalDirectRequest, domain.SignalUnansweredRequest), 55},
		{"unknown signal", newItem(domain.SourceChat, "1", "mystery"), 0},
		{"everything", func() domain.Item {
			it := newItem(domain.SourceChat, "1", domain.SignalDirectRequest, domain.SignalUrgentKeyword,
				domain.SignalUnansweredRequest, domain.SignalLowSignal)
			it.DueAt = timePtr(testNow.Add(10 * time.Minute))
			return it
		}(), 110},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, Score(tt.item, testNow))
		})
	}
}

func TestScore_DueWindow(t *testing.T) {
	tests := []struct {
		name string
		due  *time.Time
		want int
	}{
		{"no due time", nil, 0},
		{"due now", timePtr(testNow), 50},
		{"due in 30m", timePtr(testNow.Add(30 * time.Minute)), 50},
		{"due in exactly 2h", timePtr(testNow.Add(2 * time.Hour)), 50},
		{"due in 3h", timePtr(testNow.Add(3 * time.Hour)), 0},
		{"overdue", timePtr(testNow.Add(-time.Minute)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newItem(domain.SourceCalendar, "evt")
			item.DueAt = tt.due
			assert.Equal(t, tt.want, Score(item, testNow))
		})
	}
}

func TestScore_DueSoonDirectRequestIs85(t *testing.T) {
	item := newItem(domain.SourceChat, "abc", domain.SignalDirectRequest)
	item.DueAt = timePtr(testNow.Add(30 * time.Minute))

	assert.Equal(t, 85, Score(item, testNow))
	assert.Equal(t, Score(item, testNow), Score(item, testNow), "deterministic")
}

func TestScoreAll_SetsReasonsWithoutMutatingInput(t *testing.T) {
	item := newItem(domain.SourceEmail, "m1", domain.SignalDirectRequest, domain.SignalLowSignal)
	in := []domain.Item{item}

	out := ScoreAll(in, testNow)

	require.Len(t, out, 1)
	assert.Equal(t, 15, out[0].Score)
	assert.Equal(t, []string{"+35 direct request", "-20 low signal/promotion"}, out[0].ScoreReasons)
	assert.Zero(t, in[0].Score)
	assert.Nil(t, in[0].ScoreReasons)
}

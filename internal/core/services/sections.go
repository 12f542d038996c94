package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

const (
	// TopActionsLimit caps the Top Actions section.
	TopActionsLimit = 5

	// InboxWatchWindow is how far back an email still counts for the watchlist.
	InboxWatchWindow = 24 * time.Hour
)

// Assemble partitions ranked items into the six brief sections.
// Every section preserves rank order. threshold is the score below which
// items are deferred.
func Assemble(ranked []domain.Item, now time.Time, threshold int) domain.Sections {
	var s domain.Sections

	top := ranked
	if len(top) > TopActionsLimit {
		top = top[:TopActionsLimit]
	}
	s.TopActions = append([]domain.Item(nil), top...)

	promoted := make(map[string]bool)
	for i := range s.TopActions {
		promoted[s.TopActions[i].Key()] = true
	}
	for i := range ranked {
		if ranked[i].DueWithin(now, TimeCriticalWindow) {
			s.TimeCritical = append(s.TimeCritical, ranked[i])
			promoted[ranked[i].Key()] = true
		}
	}

	s.Collisions = findCollisions(ranked)
	colliding := make(map[string]bool)
	for _, c := range s.Collisions {
		colliding[c.First] = true
		colliding[c.Second] = true
	}

	for i := range ranked {
		item := &ranked[i]
		if item.Source == domain.SourceCalendar && (colliding[item.Key()] || needsPrep(item)) {
			s.CalendarPrep = append(s.CalendarPrep, *item)
		}
		if item.Source == domain.SourceEmail && !promoted[item.Key()] &&
			!item.Timestamp.Before(now.Add(-InboxWatchWindow)) {
			s.InboxWatch = append(s.InboxWatch, *item)
		}
		if item.Score < threshold || item.HasSignal(domain.SignalLowSignal) {
			s.Deferred = append(s.Deferred, *item)
		}
	}

	if len(s.TopActions) > 0 {
		first := s.TopActions[0]
		s.FirstTask = &first
	}
	return s
}

func needsPrep(item *domain.Item) bool {
	return strings.Contains(strings.ToLower(item.RecommendedAction), "prep")
}

// findCollisions returns every pair of calendar items whose windows overlap,
// in rank order of the first item. Zero-length windows collide when they
// start at the same instant.
func findCollisions(ranked []domain.Item) []domain.Collision {
	var calendar []*domain.Item
	for i := range ranked {
		if ranked[i].Source == domain.SourceCalendar {
			calendar = append(calendar, &ranked[i])
		}
	}

	var out []domain.Collision
	for i := 0; i < len(calendar); i++ {
		aStart, aEnd := calendar[i].Window()
		for j := i + 1; j < len(calendar); j++ {
			bStart, bEnd := calendar[j].Window()
			if aStart.Equal(bStart) || (aStart.Before(bEnd) && bStart.Before(aEnd)) {
				out = append(out, domain.Collision{
					First:  calendar[i].Key(),
					Second: calendar[j].Key(),
				})
			}
		}
	}
	return out
}

package chat

import (
	"sort"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// DefaultTopChannels is how many channels ChannelStats reports.
const DefaultTopChannels = 12

// ChannelStats summarises raw chat rows by normalised channel name,
// counting rows the allowlist admits and rows with no channel at all.
func ChannelStats(rows []domain.RawRow, scope domain.ChatSettings, topN int) domain.ChannelStats {
	counts := make(map[string]int)
	var stats domain.ChannelStats
	for _, row := range rows {
		channel := Channel(row)
		if channel == "" {
			stats.Unknown++
			continue
		}
		name := domain.NormalizeChannelName(channel)
		counts[name]++
		if scope.InScope(name) {
			stats.InScope++
		}
	}

	stats.TopChannels = make([]domain.ChannelCount, 0, len(counts))
	for name, count := range counts {
		stats.TopChannels = append(stats.TopChannels, domain.ChannelCount{Channel: name, Count: count})
	}
	sort.Slice(stats.TopChannels, func(i, j int) bool {
		a, b := stats.TopChannels[i], stats.TopChannels[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Channel < b.Channel
	})
	if topN > 0 && len(stats.TopChannels) > topN {
		stats.TopChannels = stats.TopChannels[:topN]
	}
	return stats
}

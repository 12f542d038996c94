package services

import "github.com/custodia-labs/flightdeck/internal/core/domain"

// Dedupe collapses repeated items within each source, keeping the first seen.
// Chat items are keyed by their DedupKey; calendar and email items by IDOrURL.
// Items from different sources never merge. Input order is preserved.
func Dedupe(items []domain.Item) []domain.Item {
	seen := make(map[domain.Source]map[string]struct{}, len(domain.AllSources()))
	out := make([]domain.Item, 0, len(items))
	for i := range items {
		item := items[i]
		keys := seen[item.Source]
		if keys == nil {
			keys = make(map[string]struct{})
			seen[item.Source] = keys
		}

		key := identityKey(&item)
		if _, dup := keys[key]; dup {
			continue
		}
		// Item.Key must also stay unique when the chat key differs from IDOrURL.
		if _, dup := keys["\x01"+item.IDOrURL]; dup {
			continue
		}
		keys[key] = struct{}{}
		keys["\x01"+item.IDOrURL] = struct{}{}
		out = append(out, item)
	}
	return out
}

func identityKey(item *domain.Item) string {
	if item.Source == domain.SourceChat && item.DedupKey != "" {
		return item.DedupKey
	}
	return item.IDOrURL
}

// CountBySource returns the number of items per source.
func CountBySource(items []domain.Item) map[domain.Source]int {
	counts := make(map[domain.Source]int)
	for i := range items {
		counts[items[i].Source]++
	}
	return counts
}

package services

import (
	"sort"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// Rank orders items by score descending, then timestamp ascending.
// Items tied on both keys keep their input order. The input is not modified.
func Rank(items []domain.Item) []domain.Item {
	ranked := make([]domain.Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Timestamp.Before(ranked[j].Timestamp)
	})
	return ranked
}

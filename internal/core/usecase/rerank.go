package usecase

import (
	"sort"

	"github.com/finsight/finsight/internal/core/domain"
)

// rerankByIntent orders retrieved context in place. Table-intent queries
// put every table-section item ahead of everything else, with descending
// similarity breaking ties; other queries sort purely by descending
// similarity. The sort is stable, so fallback items (similarity 0) keep
// their relative order at the tail.
func rerankByIntent(items []domain.ContextItem, tableIntent bool) {
	if tableIntent {
		sort.SliceStable(items, func(i, j int) bool {
			iTable := items[i].Section == domain.SectionTable
			jTable := items[j].Section == domain.SectionTable
			if iTable != jTable {
				return iTable
			}
			return items[i].Similarity > items[j].Similarity
		})
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Similarity > items[j].Similarity
	})
}

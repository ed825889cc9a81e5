package keywords

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/feedbackflow/internal/models"
)

const (
	TOP_KEYWORDS   = 10
	MIN_WORD_RUNES = 4
)

// Top returns the ten most frequent keywords of the batch.
func Top(batch models.FeedbackBatch) []models.KeywordCount {
	return Extract(batch, TOP_KEYWORDS)
}

// Extract counts lower-cased whitespace tokens longer than three characters
// and returns up to limit of them by descending count. Equal counts keep the
// order in which the words first appeared.
func Extract(batch models.FeedbackBatch, limit int) []models.KeywordCount {
	words := strings.Fields(strings.ToLower(strings.Join(batch, " ")))

	index := make(map[string]int)
	var counts []models.KeywordCount
	for _, w := range words {
		if utf8.RuneCountInString(w) < MIN_WORD_RUNES {
			continue
		}
		if i, ok := index[w]; ok {
			counts[i].Count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, models.KeywordCount{Word: w, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

package analysis

import (
	"log/slog"
	"sort"
	"time"

	"github.com/spacesedan/feedbackflow/internal/keywords"
	"github.com/spacesedan/feedbackflow/internal/models"
	"github.com/spacesedan/feedbackflow/internal/sentiment"
)

type Analyzer struct {
	classifier *sentiment.Classifier
}

func NewAnalyzer(classifier *sentiment.Classifier) *Analyzer {
	return &Analyzer{classifier: classifier}
}

// Analyze classifies every item of the batch and extracts its top keywords.
func (a *Analyzer) Analyze(batch models.FeedbackBatch) models.Analysis {
	start := time.Now()

	labels, scores := a.classifier.Score(batch)
	result := models.Analysis{
		Labels:       labels,
		Scores:       scores,
		Distribution: Distribution(labels),
		Keywords:     keywords.Top(batch),
	}

	slog.Info("[Analyzer] Analyzed feedback batch",
		slog.Int("rows", len(batch)),
		slog.Int("keywords", len(result.Keywords)),
		slog.Duration("elapsed", time.Since(start)))
	return result
}

// Distribution tallies labels by descending count; equal counts keep
// first-seen order.
func Distribution(labels []models.SentimentLabel) []models.LabelCount {
	index := make(map[models.SentimentLabel]int)
	var counts []models.LabelCount
	for _, l := range labels {
		if i, ok := index[l]; ok {
			counts[i].Count++
			continue
		}
		index[l] = len(counts)
		counts = append(counts, models.LabelCount{Label: l, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

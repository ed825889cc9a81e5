package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/feedbackflow/internal/models"
)

// Classifier scores text with the VADER opinion lexicon.
type Classifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewClassifier() *Classifier {
	return &Classifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the compound VADER score in [-1, 1]. Blank text scores 0.
func (c *Classifier) Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return c.analyzer.PolarityScores(text).Compound
}

func LabelFor(score float64) models.SentimentLabel {
	switch {
	case score > 0:
		return models.SentimentPositive
	case score < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Classify labels every item of the batch, keeping length and order.
func (c *Classifier) Classify(batch models.FeedbackBatch) []models.SentimentLabel {
	labels, _ := c.Score(batch)
	return labels
}

// Score returns the label and raw polarity of every item of the batch.
func (c *Classifier) Score(batch models.FeedbackBatch) ([]models.SentimentLabel, []float64) {
	labels := make([]models.SentimentLabel, len(batch))
	scores := make([]float64, len(batch))
	for i, text := range batch {
		scores[i] = c.Polarity(text)
		labels[i] = LabelFor(scores[i])
	}
	return labels, scores
}

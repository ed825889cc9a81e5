package models

// FeedbackBatch holds the feedback strings of one upload, in file order.
type FeedbackBatch []string

// Head returns at most the first n items of the batch.
func (b FeedbackBatch) Head(n int) FeedbackBatch {
	if n < 0 || n >= len(b) {
		return b
	}
	return b[:n]
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SuggestionText is the trimmed model output. Its content is never parsed.
type SuggestionText string

package models

// LabelCount is one bar of the sentiment chart
type LabelCount struct {
	Label SentimentLabel `json:"label"`
	Count int            `json:"count"`
}

type Analysis struct {
	Labels       []SentimentLabel `json:"labels"`
	Scores       []float64        `json:"scores"`
	Distribution []LabelCount     `json:"distribution"`
	Keywords     []KeywordCount   `json:"keywords"`
}

// Total is the number of classified feedback rows.
func (a Analysis) Total() int {
	return len(a.Labels)
}

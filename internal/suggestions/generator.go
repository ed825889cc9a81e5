package suggestions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spacesedan/feedbackflow/internal/models"
)

// PROMPT_ITEMS caps how many feedback items are embedded in one prompt.
const PROMPT_ITEMS = 20

var ErrGeneration = errors.New("suggestion generation failed")

// Completer sends one prompt to a text generation model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Generator struct {
	completer Completer
}

func NewGenerator(completer Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate prompts the model once with the head of the batch. Any failure is
// returned wrapped in ErrGeneration and no partial text is produced.
func (g *Generator) Generate(ctx context.Context, batch models.FeedbackBatch) (models.SuggestionText, error) {
	items := batch.Head(PROMPT_ITEMS)
	slog.Info("[SuggestionGenerator] Requesting suggestions",
		slog.Int("batch_size", len(batch)),
		slog.Int("prompt_items", len(items)))

	out, err := g.completer.Complete(ctx, BuildPrompt(items))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	text := strings.TrimSpace(out)
	if text == "" {
		return "", fmt.Errorf("%w: model returned an empty response", ErrGeneration)
	}
	return models.SuggestionText(text), nil
}

func BuildPrompt(items models.FeedbackBatch) string {
	var b strings.Builder
	b.WriteString("You are an AI product expert. Analyze the following customer feedbacks and suggest actionable product features or improvements:\n\n")
	b.WriteString("Feedbacks:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strconv.Quote(item))
	}
	b.WriteString("\nGive your suggestions in bullet points.")
	return b.String()
}

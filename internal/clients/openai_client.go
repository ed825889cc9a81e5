package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/feedbackflow/config"
)

var ErrEmptyCompletion = errors.New("model returned no choices")

// OpenAIClient sends single-turn prompts to any OpenAI compatible chat
// completions endpoint.
type OpenAIClient struct {
	Client openai.Client
	Model  string
}

// NewOpenAIClient builds a client from cfg. The SDK's own retries are turned
// off so every prompt is exactly one request.
func NewOpenAIClient(cfg *config.Config, opts ...option.RequestOption) *OpenAIClient {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.LLMAPIKey),
		option.WithBaseURL(cfg.LLM.BaseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{}),
		option.WithHeader("User-Agent", USER_AGENT),
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", cfg.LLM.Model),
		slog.String("base_url", cfg.LLM.BaseURL))

	return &OpenAIClient{
		Client: openai.NewClient(append(base, opts...)...),
		Model:  cfg.LLM.Model,
	}
}

// Complete returns the raw text of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		slog.Error("[OpenAIClient] Completion request failed",
			slog.String("model", c.Model),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	slog.Info("[OpenAIClient] Completion received",
		slog.String("model", c.Model),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

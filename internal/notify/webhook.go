package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/feedbackflow/internal/clients"
	"github.com/spacesedan/feedbackflow/internal/models"
)

var ErrDelivery = errors.New("webhook delivery failed")

type webhookPayload struct {
	Text string `json:"text"`
}

// Notifier posts suggestion text to a chat webhook.
type Notifier struct {
	Client *http.Client
	URL    string
	Header string
}

func NewNotifier(url, header string) *Notifier {
	return &Notifier{
		Client: &http.Client{},
		URL:    url,
		Header: header,
	}
}

// Notify sends one POST and reports true only for a 200 response. Other
// statuses return false with a nil error; transport failures return an error
// wrapping ErrDelivery.
func (n *Notifier) Notify(ctx context.Context, text models.SuggestionText) (bool, error) {
	body, err := json.Marshal(webhookPayload{Text: n.Header + string(text)})
	if err != nil {
		return false, fmt.Errorf("%w: failed to marshal payload: %w", ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		slog.Error("[Notifier] Failed to build request",
			slog.String("error", err.Error()))
		return false, fmt.Errorf("%w: failed to build request: %w", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", clients.USER_AGENT)

	start := time.Now()
	resp, err := n.Client.Do(req)
	if err != nil {
		slog.Error("[Notifier] Webhook request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		slog.Warn("[Notifier] Webhook rejected message",
			slog.Int("status_code", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return false, nil
	}

	slog.Info("[Notifier] Suggestions posted to webhook",
		slog.Duration("elapsed", time.Since(start)))
	return true, nil
}

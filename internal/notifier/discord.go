package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"usajobs-watch/internal/model"
)

// Ensure DiscordNotifier implements model.Notifier.
var _ model.Notifier = (*DiscordNotifier)(nil)

// DiscordNotifier posts alert messages to a Discord webhook. Delivery is
// deliberately low-assurance: a failed send is logged and swallowed, never
// retried, and never blocks the rest of the run.
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewDiscordNotifier returns a webhook notifier. Consecutive sends are
// paced at 2 messages/second so a burst of new postings does not trip
// Discord's rate limits.
func NewDiscordNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		logger:     logger,
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Send posts one message. Discord answers 204 No Content on success; any
// other 2xx is also treated as accepted. Non-2xx responses and transport
// errors are logged and reported, but callers treat them as non-fatal.
func (d *DiscordNotifier) Send(ctx context.Context, message string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}

	body, err := json.Marshal(webhookPayload{Content: message})
	if err != nil {
		return fmt.Errorf("discord send: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("discord send failed", "error", err)
		return fmt.Errorf("discord send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		d.logger.Debug("discord accepted message", "status", resp.StatusCode)
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		d.logger.Debug("discord accepted message", "status", resp.StatusCode)
		return nil
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		d.logger.Warn("discord webhook rejected message",
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return &model.HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
}

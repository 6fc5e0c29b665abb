// Package retry wraps a SearchClient with bounded retries and exponential
// backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"usajobs-watch/internal/model"
)

// Client is a decorator that retries failed searches before giving up.
// Every failure counts as an attempt: non-200 statuses, transport errors,
// and undecodable bodies are all treated the same way, because for a batch
// job the only question is whether this run got a usable page or not.
type Client struct {
	inner    model.SearchClient
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// New wraps inner with a retry loop of at most attempts tries. The sleep
// before try n+1 is backoff * 2^(n-1), so base=5s gives 5s, 10s, 20s.
func New(inner model.SearchClient, attempts int, backoff time.Duration, logger *slog.Logger) *Client {
	return &Client{
		inner:    inner,
		attempts: attempts,
		backoff:  backoff,
		logger:   logger,
	}
}

// Search tries the wrapped client up to the attempt budget. On success the
// page is returned immediately. Once the budget is spent it returns a
// *model.FetchExhaustedError carrying the last failure.
func (c *Client) Search(ctx context.Context) (*model.SearchPage, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		page, err := c.inner.Search(ctx)
		if err == nil {
			return page, nil
		}

		// Cancellation is the caller shutting us down, not a flaky fetch.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		lastErr = err
		c.logger.Error("fetch attempt failed",
			"attempt", attempt,
			"max_attempts", c.attempts,
			"error", err,
		)

		if attempt == c.attempts {
			break
		}

		sleep := c.backoff * (1 << (attempt - 1))
		c.logger.Info("backing off before retry", "sleep", sleep.String())

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}

	return nil, &model.FetchExhaustedError{Attempts: c.attempts, Last: lastErr}
}

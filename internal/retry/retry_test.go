package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"usajobs-watch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient calls fn on each invocation, tracking the call count.
type mockClient struct {
	calls int
	fn    func(attempt int) (*model.SearchPage, error)
}

func (m *mockClient) Search(_ context.Context) (*model.SearchPage, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestSucceedsOnFirstAttempt(t *testing.T) {
	page := &model.SearchPage{Total: 3}
	mock := &mockClient{fn: func(_ int) (*model.SearchPage, error) {
		return page, nil
	}}

	c := New(mock, 3, 10*time.Millisecond, discardLogger())
	got, err := c.Search(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("Total = %d", got.Total)
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want 1", mock.calls)
	}
}

func TestFailsTwiceThenSucceeds(t *testing.T) {
	page := &model.SearchPage{Total: 1}
	mock := &mockClient{fn: func(attempt int) (*model.SearchPage, error) {
		if attempt <= 2 {
			return nil, &model.HTTPError{StatusCode: 503}
		}
		return page, nil
	}}

	base := 10 * time.Millisecond
	c := New(mock, 3, base, discardLogger())

	start := time.Now()
	got, err := c.Search(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Total != 1 {
		t.Fatalf("unexpected page: %+v", got)
	}
	if mock.calls != 3 {
		t.Errorf("calls = %d, want exactly 3", mock.calls)
	}
	// Two sleeps: base then base*2.
	if elapsed < 3*base {
		t.Errorf("elapsed = %v, want at least %v (backoff 10ms + 20ms)", elapsed, 3*base)
	}
}

func TestNon200IsRetriedToo(t *testing.T) {
	// Unlike interactive clients, the batch watcher retries every failure,
	// 4xx included: a bad gateway and a misbehaving WAF look the same to cron.
	mock := &mockClient{fn: func(attempt int) (*model.SearchPage, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 404}
		}
		return &model.SearchPage{}, nil
	}}

	c := New(mock, 2, time.Millisecond, discardLogger())
	if _, err := c.Search(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Errorf("calls = %d, want 2", mock.calls)
	}
}

func TestExhaustionCarriesLastError(t *testing.T) {
	lastErr := errors.New("connection reset")
	mock := &mockClient{fn: func(attempt int) (*model.SearchPage, error) {
		if attempt < 3 {
			return nil, &model.HTTPError{StatusCode: 500}
		}
		return nil, lastErr
	}}

	c := New(mock, 3, time.Millisecond, discardLogger())
	_, err := c.Search(context.Background())

	var exhausted *model.FetchExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *model.FetchExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(exhausted, lastErr) {
		t.Errorf("exhausted error should wrap the final failure, got %v", exhausted.Last)
	}
	if mock.calls != 3 {
		t.Errorf("calls = %d, want 3", mock.calls)
	}
}

func TestCancellationStopsRetrying(t *testing.T) {
	mock := &mockClient{fn: func(_ int) (*model.SearchPage, error) {
		return nil, &model.HTTPError{StatusCode: 500}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	c := New(mock, 5, time.Hour, discardLogger())

	done := make(chan error, 1)
	go func() {
		_, err := c.Search(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return after cancellation")
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry after cancel)", mock.calls)
	}
}

func TestCancelledInnerErrorNotRetried(t *testing.T) {
	mock := &mockClient{fn: func(_ int) (*model.SearchPage, error) {
		return nil, context.DeadlineExceeded
	}}

	c := New(mock, 3, time.Millisecond, discardLogger())
	_, err := c.Search(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error passthrough, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want 1", mock.calls)
	}
}

package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"usajobs-watch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend204IsSuccess(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Content != "hello" {
		t.Errorf("content = %q", payload.Content)
	}
}

func TestSendOther2xxIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendNon2xxReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "invalid webhook"}`))
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL, srv.Client(), discardLogger())
	err := n.Send(context.Background(), "hello")

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
}

func TestSendTransportErrorReported(t *testing.T) {
	n := NewDiscordNotifier("http://127.0.0.1:1/webhook", &http.Client{Timeout: time.Second}, discardLogger())
	if err := n.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestFormatPosting(t *testing.T) {
	p := model.Posting{
		Title:        "Building Manager",
		Organization: "Naval Facilities Engineering Systems Command",
		Location:     "Camp Pendleton, California",
		URL:          "https://apply.usajobs.gov/791234500",
		Grades:       []string{"09", "11"},
		ClosesAt:     "2026-09-15",
	}

	msg := FormatPosting(p)
	want := "🔔 **Building Manager** (09, 11) @ Naval Facilities Engineering Systems Command\n" +
		"📍 Camp Pendleton, California | Closes: 2026-09-15\n" +
		"https://apply.usajobs.gov/791234500"
	if msg != want {
		t.Errorf("message:\n%s\nwant:\n%s", msg, want)
	}
}

func TestFormatPostingOmitsEmptyParts(t *testing.T) {
	p := model.Posting{
		Title:    "Program Analyst",
		Location: "Oceanside, California",
		URL:      "https://www.usajobs.gov/job/1",
	}

	msg := FormatPosting(p)
	if strings.Contains(msg, "()") || strings.Contains(msg, "@ \n") || strings.Contains(msg, "Closes:") {
		t.Errorf("empty parts leaked into message:\n%s", msg)
	}
}

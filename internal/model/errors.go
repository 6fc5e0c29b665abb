package model

import "fmt"

// HTTPError wraps a non-200 response so callers can inspect the status code.
type HTTPError struct {
	StatusCode int
	Body       string // first bytes of the response body, for log messages
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FetchExhaustedError is returned once every fetch attempt has failed.
// Last carries the error recorded on the final attempt.
type FetchExhaustedError struct {
	Attempts int
	Last     error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *FetchExhaustedError) Unwrap() error {
	return e.Last
}

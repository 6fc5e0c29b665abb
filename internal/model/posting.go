package model

import (
	"context"
	"time"
)

// Posting is one job announcement extracted from a search response.
type Posting struct {
	ID           string    // MatchedObjectId from the API
	Fingerprint  string    // stable dedup key, see internal/fingerprint
	Title        string    // position title
	Organization string    // hiring organization
	Location     string    // normalized location display
	URL          string    // first apply URI, falling back to the position URI
	Grades       []string  // grade codes, e.g. ["09", "11"]
	ClosesAt     string    // application close date as reported (may be empty)
	FirstSeen    time.Time // our clock, set when the posting is first accepted
}

// SearchClient fetches one page of search results.
type SearchClient interface {
	Search(ctx context.Context) (*SearchPage, error)
}

// SearchPage is the extracted view of one search response.
type SearchPage struct {
	Total    int       // result count reported by the API
	Postings []Posting // postings in response order, malformed items dropped
}

// Notifier delivers one alert message.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// PostingFilter decides whether a not-yet-seen posting should be announced.
type PostingFilter interface {
	Match(p Posting) bool
}

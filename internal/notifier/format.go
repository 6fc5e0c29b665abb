package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"usajobs-watch/internal/model"
)

// FormatPosting renders the alert message for one posting:
//
//	🔔 **title** (grades) @ org
//	📍 locations | Closes: date
//	url
func FormatPosting(p model.Posting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 **%s**", p.Title)
	if len(p.Grades) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(p.Grades, ", "))
	}
	if p.Organization != "" {
		fmt.Fprintf(&b, " @ %s", p.Organization)
	}

	fmt.Fprintf(&b, "\n📍 %s", p.Location)
	if p.ClosesAt != "" {
		fmt.Fprintf(&b, " | Closes: %s", p.ClosesAt)
	}

	fmt.Fprintf(&b, "\n%s", p.URL)
	return b.String()
}

// SendTestMessage pushes a dummy posting through the notifier so operators
// can verify the webhook wiring before trusting a scheduled run.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	test := model.Posting{
		ID:           "test-001",
		Title:        "Test Notification - Integration Verified",
		Organization: "usajobs-watch",
		Location:     "Everywhere",
		URL:          "https://www.usajobs.gov/",
		Grades:       []string{"00"},
		FirstSeen:    time.Now(),
	}
	return n.Send(ctx, FormatPosting(test))
}

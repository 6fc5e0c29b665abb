package usajobs

import (
	"encoding/json"
	"sort"
	"strings"

	"usajobs-watch/internal/fingerprint"
	"usajobs-watch/internal/model"
)

// searchEnvelope is the top-level USAJOBS search response.
type searchEnvelope struct {
	SearchResult searchResult `json:"SearchResult"`
}

type searchResult struct {
	// Pointer so an omitted count is distinguishable from an explicit zero.
	SearchResultCount *int         `json:"SearchResultCount"`
	SearchResultItems []searchItem `json:"SearchResultItems"`
}

type searchItem struct {
	MatchedObjectID         string      `json:"MatchedObjectId"`
	MatchedObjectDescriptor *descriptor `json:"MatchedObjectDescriptor"`
}

type descriptor struct {
	PositionTitle           string          `json:"PositionTitle"`
	OrganizationName        string          `json:"OrganizationName"`
	PositionLocationDisplay locationDisplay `json:"PositionLocationDisplay"`
	ApplyURI                []string        `json:"ApplyURI"`
	PositionURI             string          `json:"PositionURI"`
	JobGrade                []jobGrade      `json:"JobGrade"`
	ApplicationCloseDate    string          `json:"ApplicationCloseDate"`
}

type jobGrade struct {
	Code string `json:"Code"`
}

// locationDisplay tolerates both shapes the API uses: a plain string or a
// list of location objects.
type locationDisplay struct {
	Scalar string
	List   []positionLocation
}

type positionLocation struct {
	LocationName string `json:"LocationName"`
}

func (l *locationDisplay) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &l.List)
	}
	return json.Unmarshal(data, &l.Scalar)
}

// Display collapses the location field into a single line: a list becomes a
// deduplicated, sorted, comma-joined set of names; a scalar gets whitespace
// runs squeezed and trimmed.
func (l locationDisplay) Display() string {
	if len(l.List) > 0 {
		seen := map[string]bool{}
		var names []string
		for _, loc := range l.List {
			name := cleanText(loc.LocationName)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		sort.Strings(names)
		return strings.Join(names, ", ")
	}
	return cleanText(l.Scalar)
}

// cleanText squeezes internal whitespace runs to single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// page extracts normalized postings from the envelope. Items without a
// descriptor are malformed data noise and dropped silently.
func (e *searchEnvelope) page() *model.SearchPage {
	sr := e.SearchResult

	// An absent count is not a zero count: fall back to the item list so a
	// sloppy response never masquerades as an empty result set.
	total := len(sr.SearchResultItems)
	if sr.SearchResultCount != nil {
		total = *sr.SearchResultCount
	}
	out := &model.SearchPage{Total: total}

	for _, item := range sr.SearchResultItems {
		d := item.MatchedObjectDescriptor
		if d == nil {
			continue
		}

		url := d.PositionURI
		if len(d.ApplyURI) > 0 && d.ApplyURI[0] != "" {
			url = d.ApplyURI[0]
		}

		var grades []string
		for _, g := range d.JobGrade {
			if g.Code != "" {
				grades = append(grades, g.Code)
			}
		}

		out.Postings = append(out.Postings, model.Posting{
			ID:           item.MatchedObjectID,
			Fingerprint:  fingerprint.Sum(item.MatchedObjectID, d.PositionTitle, url),
			Title:        d.PositionTitle,
			Organization: d.OrganizationName,
			Location:     d.PositionLocationDisplay.Display(),
			URL:          url,
			Grades:       grades,
			ClosesAt:     d.ApplicationCloseDate,
		})
	}

	return out
}

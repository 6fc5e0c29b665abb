// Package usajobs is the adapter for the USAJOBS search API.
package usajobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"usajobs-watch/internal/config"
	"usajobs-watch/internal/model"
)

const defaultBaseURL = "https://data.usajobs.gov/api/Search"

// Cap on the response-body snippet carried into error messages.
const errBodyLimit = 200

// Client issues authenticated searches against the USAJOBS API.
type Client struct {
	baseURL   string
	userAgent string
	apiKey    string
	query     config.QueryConfig
	client    *http.Client
}

// New creates a search client. USAJOBS requires the caller's email as the
// User-Agent and an API key in the Authorization-Key header.
func New(userAgent, apiKey string, query config.QueryConfig, httpClient *http.Client) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		userAgent: userAgent,
		apiKey:    apiKey,
		query:     query,
		client:    httpClient,
	}
}

// Search performs one GET against the search endpoint and extracts the
// result page. Non-200 responses come back as *model.HTTPError.
func (c *Client) Search(ctx context.Context) (*model.SearchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+c.values().Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("usajobs search: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usajobs search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, &model.HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("usajobs search: decode response: %w", err)
	}

	return envelope.page(), nil
}

func (c *Client) values() url.Values {
	q := c.query
	return url.Values{
		"JobCategoryCode": {strings.Join(q.CategoryCodes, ":")},
		"LocationName":    {q.LocationName},
		"Radius":          {q.Radius},
		"PayGradeLow":     {q.PayGradeLow},
		"PayGradeHigh":    {q.PayGradeHigh},
		"Fields":          {q.Fields},
		"WhoMayApply":     {q.WhoMayApply},
		"SortField":       {q.SortField},
		"SortDirection":   {q.SortDirection},
		"ResultsPerPage":  {strconv.Itoa(q.ResultsPerPage)},
	}
}

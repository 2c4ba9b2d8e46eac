package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"weekend-guide/internal/domain"
)

// DefaultBaseURL is the Airtable REST endpoint. Overridable for tests.
const DefaultBaseURL = "https://api.airtable.com"

const pageSize = 100

// requestsPerSecond matches Airtable's documented per-base rate limit.
const requestsPerSecond = 5

type listResponse struct {
	Records []struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// Client fetches event records from an Airtable base, following the offset
// cursor until the table is exhausted.
type Client struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Table   string
	HTTP    *http.Client

	limiter *rate.Limiter
}

// NewClient constructs an Airtable client for one base and table.
func NewClient(baseURL, apiKey, baseID, table string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		BaseID:  baseID,
		Table:   table,
		HTTP:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// FetchEvents lists every record in the table and maps it to an EventRecord.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.EventRecord, error) {
	if c.APIKey == "" || c.BaseID == "" {
		return nil, fmt.Errorf("airtable api key and base id are required")
	}

	var events []domain.EventRecord
	offset := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := c.listPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Records {
			events = append(events, recordToEvent(rec.ID, rec.Fields))
		}

		offset = page.Offset
		if offset == "" {
			break
		}
	}
	return events, nil
}

func (c *Client) listPage(ctx context.Context, offset string) (*listResponse, error) {
	endpoint := fmt.Sprintf("%s/v0/%s/%s", c.BaseURL, url.PathEscape(c.BaseID), url.PathEscape(c.Table))
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(pageSize))
	if offset != "" {
		params.Set("offset", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create airtable request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call airtable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("airtable returned %d: %s", resp.StatusCode, string(body))
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode airtable response: %w", err)
	}
	return &page, nil
}

// recordToEvent maps Airtable fields to an event record. Missing or
// unparseable timestamps default to now and start+2h so a sloppy row never
// blocks ingestion.
func recordToEvent(id string, f map[string]any) domain.EventRecord {
	now := time.Now().UTC()

	start := now
	if t, err := domain.ParseEventTime(f["Start"]); err == nil {
		start = t
	}
	end := start.Add(2 * time.Hour)
	if t, err := domain.ParseEventTime(f["End"]); err == nil {
		end = t
	}

	return domain.EventRecord{
		ID:           id,
		Title:        stringField(f, "Title", "Untitled Event"),
		Description:  stringField(f, "Description", ""),
		StartISO:     start.Format(time.RFC3339),
		EndISO:       end.Format(time.RFC3339),
		Borough:      stringField(f, "Borough", "Unknown"),
		Neighborhood: stringField(f, "Neighborhood", ""),
		Address:      stringField(f, "Address", ""),
		Tags:         stringSliceField(f, "Tags"),
		KidFriendly:  boolField(f, "Kid Friendly"),
		Accessibility: domain.Accessibility{
			Wheelchair: boolField(f, "Wheelchair Accessible"),
		},
		SignupLink:  stringField(f, "Signup Link", ""),
		LastUpdated: now.Format(time.RFC3339),
	}
}

func stringField(f map[string]any, key, fallback string) string {
	if v, ok := f[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolField(f map[string]any, key string) bool {
	v, _ := f[key].(bool)
	return v
}

func stringSliceField(f map[string]any, key string) []string {
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

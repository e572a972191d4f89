// Package eia fetches commodity price observations from the EIA Open Data
// series endpoint. It is the alternate provider; FRED is the default.
package eia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.eia.gov/series/"

// Client queries EIA series. Transient failures are retried with the same
// exponential backoff envelope as the FRED client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client

	maxRetries int
	backoff    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used by tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithRetries sets the retry count and initial backoff. Backoff triples on
// each attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

// New returns an EIA client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		http:       http.DefaultClient,
		maxRetries: 3,
		backoff:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ dailydiesel.PriceSource = (*Client)(nil)

// payload mirrors the /series response: data pairs come newest first.
type payload struct {
	Series []struct {
		Data [][2]json.RawMessage `json:"data"`
	} `json:"series"`
}

// Latest returns the most recent observation of the series.
func (c *Client) Latest(ctx context.Context, seriesID string) (dailydiesel.Observation, error) {
	obs, err := c.series(ctx, seriesID)
	if err != nil {
		return dailydiesel.Observation{}, err
	}
	if len(obs) == 0 {
		return dailydiesel.Observation{}, fmt.Errorf("%w: series %s has no data", dailydiesel.ErrSourceUnavailable, seriesID)
	}
	return obs[len(obs)-1], nil
}

// Range returns the observations within r, ascending. The endpoint has no
// range parameters, so the full series is fetched and filtered locally.
func (c *Client) Range(ctx context.Context, seriesID string, r date.Range) ([]dailydiesel.Observation, error) {
	obs, err := c.series(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	filtered := obs[:0]
	for _, o := range obs {
		if r.Contains(o.Date) {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no data for series %s between %s and %s", dailydiesel.ErrSourceUnavailable, seriesID, r.From, r.To)
	}
	return filtered, nil
}

// series fetches and decodes all observations of a series, ascending.
func (c *Client) series(ctx context.Context, seriesID string) ([]dailydiesel.Observation, error) {
	params := url.Values{
		"api_key":   {c.apiKey},
		"series_id": {seriesID},
	}
	addr := c.baseURL + "?" + params.Encode()

	content, err := c.get(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: eia series %s: %v", dailydiesel.ErrSourceUnavailable, seriesID, err)
	}

	var p payload
	if err := json.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("%w: eia series %s: %v", dailydiesel.ErrSourceUnavailable, seriesID, err)
	}
	if len(p.Series) == 0 {
		return nil, fmt.Errorf("%w: eia series %s: empty response", dailydiesel.ErrSourceUnavailable, seriesID)
	}

	data := p.Series[0].Data
	obs := make([]dailydiesel.Observation, 0, len(data))
	// newest first in the payload: walk backwards to return ascending.
	for i := len(data) - 1; i >= 0; i-- {
		if string(data[i][1]) == "null" {
			continue // day without a quotation
		}
		o, err := parsePoint(data[i])
		if err != nil {
			return nil, fmt.Errorf("%w: eia series %s: %v", dailydiesel.ErrSourceUnavailable, seriesID, err)
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// parsePoint decodes one [date, value] pair.
func parsePoint(pair [2]json.RawMessage) (dailydiesel.Observation, error) {
	var rawDate string
	if err := json.Unmarshal(pair[0], &rawDate); err != nil {
		return dailydiesel.Observation{}, fmt.Errorf("invalid data point date: %w", err)
	}
	on, err := parseEIADate(rawDate)
	if err != nil {
		return dailydiesel.Observation{}, err
	}
	var value decimal.Decimal
	if err := json.Unmarshal(pair[1], &value); err != nil {
		return dailydiesel.Observation{}, fmt.Errorf("invalid data point value: %w", err)
	}
	return dailydiesel.Observation{Date: on, Value: value}, nil
}

// parseEIADate normalizes the EIA date encodings to a calendar date:
// "20250821" daily, "202508" monthly (first of the month), "2025" annual
// (January 1st), and ISO "2025-08-21" passed through.
func parseEIADate(raw string) (date.Date, error) {
	switch len(raw) {
	case 10:
		return date.Parse(raw)
	case 8:
		return date.Parse(raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8])
	case 6:
		return date.Parse(raw[0:4] + "-" + raw[4:6] + "-01")
	case 4:
		return date.Parse(raw + "-01-01")
	default:
		return date.Date{}, fmt.Errorf("unrecognized date %q", raw)
	}
}

// get performs one GET with retries.
func (c *Client) get(ctx context.Context, addr string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		content, err := c.fetch(ctx, addr)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		wait := c.backoff * time.Duration(pow3(attempt-1))
		log.Warn().Err(lastErr).Dur("backoff", wait).Int("attempt", attempt).Msg("eia request failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func pow3(n int) int {
	r := 1
	for range n {
		r *= 3
	}
	return r
}

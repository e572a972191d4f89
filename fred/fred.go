// Package fred fetches commodity price observations from the FRED
// (Federal Reserve Economic Data) observations API.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.stlouisfed.org/fred/series/observations"

// FRED reports days without a quotation (holidays, weekends) with the "."
// placeholder; those observations are skipped, never parsed.
const missingValue = "."

// Client queries FRED series observations. It retries transient failures
// with exponential backoff, rate-limits outgoing calls, trips a circuit
// breaker after repeated failures, and caches responses on disk for the
// rest of the day.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	maxRetries int
	backoff    time.Duration
	lookback   int // days scanned back by Latest
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used by tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient replaces the cached default transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLookback bounds the window Latest scans for a numeric observation.
func WithLookback(days int) Option { return func(c *Client) { c.lookback = days } }

// WithRetries sets the retry count and initial backoff of transient
// failures. Backoff triples on each attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

// New returns a FRED client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		http:       newCachingClient(),
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		maxRetries: 3,
		backoff:    5 * time.Second,
		lookback:   60,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fred",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ dailydiesel.PriceSource = (*Client)(nil)

// Latest returns the most recent numeric observation of the series within
// the lookback window.
func (c *Client) Latest(ctx context.Context, seriesID string) (dailydiesel.Observation, error) {
	today := date.Today()
	params := url.Values{
		"observation_start": {today.Add(-c.lookback).String()},
		"sort_order":        {"desc"},
		"limit":             {"20"},
	}
	obs, err := c.observations(ctx, seriesID, params)
	if err != nil {
		return dailydiesel.Observation{}, err
	}
	if len(obs) == 0 {
		return dailydiesel.Observation{}, fmt.Errorf("%w: no recent numeric observation for series %s", dailydiesel.ErrSourceUnavailable, seriesID)
	}
	// sort_order desc: the first numeric observation is the latest.
	return obs[0], nil
}

// Range returns all numeric observations within r, ascending, bounds
// included.
func (c *Client) Range(ctx context.Context, seriesID string, r date.Range) ([]dailydiesel.Observation, error) {
	params := url.Values{
		"observation_start": {r.From.String()},
		"observation_end":   {r.To.String()},
		"sort_order":        {"asc"},
		"limit":             {"10000"},
	}
	obs, err := c.observations(ctx, seriesID, params)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: no data for series %s between %s and %s", dailydiesel.ErrSourceUnavailable, seriesID, r.From, r.To)
	}
	return obs, nil
}

// observations performs the API call and decodes the numeric observations.
func (c *Client) observations(ctx context.Context, seriesID string, params url.Values) ([]dailydiesel.Observation, error) {
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	addr := c.baseURL + "?" + params.Encode()

	payload, err := c.breaker.Execute(func() (any, error) {
		return c.get(ctx, addr)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fred series %s: %v", dailydiesel.ErrSourceUnavailable, seriesID, err)
	}

	obs, err := parseObservations(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: fred series %s: %v", dailydiesel.ErrSourceUnavailable, seriesID, err)
	}
	return obs, nil
}

// get performs one rate-limited GET with retries, decoding the JSON body
// into a generic value.
func (c *Client) get(ctx context.Context, addr string) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var jobj any
		lastErr = jwget(ctx, c.http, addr, &jobj)
		if lastErr == nil {
			return jobj, nil
		}

		if attempt == c.maxRetries {
			break
		}
		// exponential backoff: backoff, 3*backoff, 9*backoff...
		wait := c.backoff * time.Duration(pow3(attempt-1))
		log.Warn().Err(lastErr).Dur("backoff", wait).Int("attempt", attempt).Msg("fred request failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func pow3(n int) int {
	r := 1
	for range n {
		r *= 3
	}
	return r
}

// parseObservations extracts (date, value) pairs from the payload, skipping
// the "." placeholder of days without a quotation.
func parseObservations(payload any) ([]dailydiesel.Observation, error) {
	jval, err := jsonpath.Get("$.observations[*]", payload)
	if err != nil {
		return nil, fmt.Errorf("no observations in response: %w", err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("observations is not a list")
	}

	obs := make([]dailydiesel.Observation, 0, len(jlist))
	for _, item := range jlist {
		jobs, ok := item.(map[string]any)
		if !ok {
			continue
		}
		raw, _ := jobs["value"].(string)
		if raw == "" || raw == missingValue {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid observation value %q: %w", raw, err)
		}
		rawDate, _ := jobs["date"].(string)
		on, err := date.Parse(rawDate)
		if err != nil {
			return nil, fmt.Errorf("invalid observation date %q: %w", rawDate, err)
		}
		obs = append(obs, dailydiesel.Observation{Date: on, Value: value})
	}
	return obs, nil
}

// jwget performs an HTTP GET and unmarshals the JSON response.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, data)
}

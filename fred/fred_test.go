package fred

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// observationsJSON builds a FRED-shaped response from (date, value) pairs.
func observationsJSON(pairs ...[2]string) string {
	out := `{"observations":[`
	for i, p := range pairs {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"date":%q,"value":%q}`, p[0], p[1])
	}
	return out + `]}`
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()), // no disk cache in tests
		WithRetries(2, time.Millisecond),
	)
}

func TestLatestSkipsPlaceholderValues(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "desc", r.URL.Query().Get("sort_order"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "DCOILBRENTEU", r.URL.Query().Get("series_id"))
		// Descending: the holiday "." rows come before the last quotation.
		fmt.Fprint(w, observationsJSON(
			[2]string{"2024-01-07", "."},
			[2]string{"2024-01-06", "."},
			[2]string{"2024-01-05", "80.5"},
			[2]string{"2024-01-04", "79.9"},
		))
	})

	obs, err := c.Latest(context.Background(), "DCOILBRENTEU")
	require.NoError(t, err)
	assert.Equal(t, date.MustParse("2024-01-05"), obs.Date)
	assert.Equal(t, "80.5", obs.Value.String())
}

func TestLatestNoNumericObservation(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, observationsJSON([2]string{"2024-01-07", "."}))
	})

	_, err := c.Latest(context.Background(), "DCOILBRENTEU")
	require.ErrorIs(t, err, dailydiesel.ErrSourceUnavailable)
}

func TestRange(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "asc", r.URL.Query().Get("sort_order"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("observation_start"))
		assert.Equal(t, "2024-01-05", r.URL.Query().Get("observation_end"))
		fmt.Fprint(w, observationsJSON(
			[2]string{"2024-01-02", "80.0"},
			[2]string{"2024-01-03", "."},
			[2]string{"2024-01-04", "81.0"},
		))
	})

	obs, err := c.Range(context.Background(), "DCOILBRENTEU", date.Range{
		From: date.MustParse("2024-01-01"),
		To:   date.MustParse("2024-01-05"),
	})
	require.NoError(t, err)
	require.Len(t, obs, 2, "placeholder rows are skipped")
	assert.Equal(t, date.MustParse("2024-01-02"), obs[0].Date)
	assert.Equal(t, date.MustParse("2024-01-04"), obs[1].Date)
}

func TestServerErrorIsSourceUnavailable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	_, err := c.Latest(context.Background(), "DCOILBRENTEU")
	require.ErrorIs(t, err, dailydiesel.ErrSourceUnavailable)
}

func TestRetriesTransientFailures(t *testing.T) {
	attempts := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, observationsJSON([2]string{"2024-01-05", "80.5"}))
	})

	_, err := c.Latest(context.Background(), "DCOILBRENTEU")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestMalformedPayloadIsSourceUnavailable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected": true}`)
	})

	_, err := c.Latest(context.Background(), "DCOILBRENTEU")
	require.ErrorIs(t, err, dailydiesel.ErrSourceUnavailable)
}

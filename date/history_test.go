package date

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendKeepsOrder(t *testing.T) {
	var h History[float64]
	h.Append(MustParse("2024-01-03"), 3)
	h.Append(MustParse("2024-01-01"), 1)
	h.Append(MustParse("2024-01-02"), 2)

	require.Equal(t, 3, h.Len())

	var days []Date
	var values []float64
	for on, v := range h.Values() {
		days = append(days, on)
		values = append(values, v)
	}
	assert.Equal(t, []Date{MustParse("2024-01-01"), MustParse("2024-01-02"), MustParse("2024-01-03")}, days)
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func TestHistoryAppendOverwrites(t *testing.T) {
	var h History[float64]
	h.Append(MustParse("2024-01-01"), 1)
	h.Append(MustParse("2024-01-01"), 10)

	require.Equal(t, 1, h.Len())
	v, ok := h.Get(MustParse("2024-01-01"))
	require.True(t, ok)
	assert.Equal(t, 10.0, v)
}

func TestHistoryGet(t *testing.T) {
	var h History[string]
	h.Append(MustParse("2024-01-02"), "two")

	v, ok := h.Get(MustParse("2024-01-02"))
	require.True(t, ok)
	assert.Equal(t, "two", v)

	_, ok = h.Get(MustParse("2024-01-01"))
	assert.False(t, ok)
}

func TestHistoryValueAsOf(t *testing.T) {
	var h History[string]
	h.Append(MustParse("2024-01-01"), "one")
	h.Append(MustParse("2024-01-05"), "five")

	// Exact hit.
	v, ok := h.ValueAsOf(MustParse("2024-01-05"))
	require.True(t, ok)
	assert.Equal(t, "five", v)

	// Between points: the most recent earlier value.
	v, ok = h.ValueAsOf(MustParse("2024-01-03"))
	require.True(t, ok)
	assert.Equal(t, "one", v)

	// Before the first point: nothing.
	_, ok = h.ValueAsOf(MustParse("2023-12-31"))
	assert.False(t, ok)
}

func TestHistoryLatest(t *testing.T) {
	var h History[int]
	day, v := h.Latest()
	assert.True(t, day.IsZero())
	assert.Zero(t, v)

	h.Append(MustParse("2024-01-01"), 1)
	h.Append(MustParse("2024-01-02"), 2)
	day, v = h.Latest()
	assert.Equal(t, MustParse("2024-01-02"), day)
	assert.Equal(t, 2, v)
}

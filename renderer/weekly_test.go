package renderer

import (
	"testing"
	"time"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows(t *testing.T) []dailydiesel.Row {
	t.Helper()
	s := dailydiesel.Schedule{Weekday: time.Friday, Basis: dailydiesel.ObservationDate}
	l := dailydiesel.NewLedger(s)
	on := date.MustParse("2024-01-01")
	for i := range 10 {
		price := decimal.NewFromInt(int64(80 + i))
		l.Merge(on.Add(i), price, price.Add(decimal.NewFromInt(20)), on.Add(i))
	}
	l.Recompute()
	return l.Rows()
}

func TestWeeklyMarkdown(t *testing.T) {
	rows := sampleRows(t)
	md := WeeklyMarkdown(rows, date.MustParse("2024-01-05"))

	assert.Contains(t, md, "# Brent / Diesel Weekly Report — 2024-01-05")
	assert.Contains(t, md, "2024-01-05")
	assert.Contains(t, md, "Brent (USD/bbl)")
	assert.Contains(t, md, "$84.00")
	assert.Contains(t, md, "Weekly spread (abs)")
	assert.Contains(t, md, "$20.00")
	assert.Contains(t, md, "## Last 7 Days")
}

func TestWeeklyMarkdownFallsBackToLatestRow(t *testing.T) {
	rows := sampleRows(t)
	// No row for the requested day: the latest row is reported instead.
	md := WeeklyMarkdown(rows, date.MustParse("2024-02-01"))
	assert.Contains(t, md, "2024-01-10")
}

func TestWeeklyMarkdownEmptyLedger(t *testing.T) {
	md := WeeklyMarkdown(nil, date.MustParse("2024-01-05"))
	assert.Contains(t, md, "The ledger is empty.")
}

func TestStatusMarkdown(t *testing.T) {
	rec := dailydiesel.HeartbeatRecord{
		LastRun:          time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		LastSuccess:      date.MustParse("2024-01-05"),
		LastErrorMessage: "",
	}
	md := StatusMarkdown(rec, sampleRows(t))

	assert.Contains(t, md, "# Daily Diesel Status")
	assert.Contains(t, md, "operational")
	assert.Contains(t, md, "2024-01-05")
	assert.Contains(t, md, "## Latest Ledger Rows")
}

func TestStatusMarkdownDegraded(t *testing.T) {
	rec := dailydiesel.HeartbeatRecord{
		LastRun:          time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		LastError:        date.MustParse("2024-01-05"),
		LastErrorMessage: "fred series DCOILBRENTEU: 503",
	}
	md := StatusMarkdown(rec, nil)

	assert.Contains(t, md, "degraded")
	assert.Contains(t, md, "fred series DCOILBRENTEU: 503")
	assert.Contains(t, md, "The ledger is empty.")
}

func TestHistoryTable(t *testing.T) {
	rows := sampleRows(t)
	table := HistoryTable(rows[:3])

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "2024-01-01", table.Rows[0][0])
	assert.Equal(t, "$80.00", table.Rows[0][1])
	// No previous row: the change cell is a dash.
	assert.Equal(t, "-", table.Rows[0][3])
	assert.NotEqual(t, "-", table.Rows[1][3])
}

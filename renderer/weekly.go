// Package renderer builds the markdown reports consumed by the weekly email
// and the status terminal view.
package renderer

import (
	"bytes"
	"fmt"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	md "github.com/nao1215/markdown"
)

// historyRows bounds the history table of the weekly report.
const historyRows = 7

// WeeklyMarkdown renders the report for the reporting day 'on': the day's
// prices, the weekly spread, rolling means when available, and the last
// week of history.
func WeeklyMarkdown(rows []dailydiesel.Row, on date.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Brent / Diesel Weekly Report — %s", on))

	row, ok := findRow(rows, on)
	if !ok && len(rows) > 0 {
		// The reporting day may not be a row itself under the execution-date
		// policy; fall back to the latest row.
		row, ok = rows[len(rows)-1], true
	}
	if !ok {
		doc.PlainText("The ledger is empty.")
		return doc.String()
	}

	summary := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Date", row.Date.String()},
			{"ISO week", fmt.Sprintf("%d", row.ISOWeek)},
			{"Brent (USD/bbl)", dailydiesel.USD(row.Brent).String()},
			{"Diesel (USD/bbl)", dailydiesel.USD(row.Diesel).String()},
		},
	}
	if row.BrentChange != nil {
		summary.Rows = append(summary.Rows, []string{"Brent day change", row.BrentChange.SignedString()})
	}
	if row.DieselChange != nil {
		summary.Rows = append(summary.Rows, []string{"Diesel day change", row.DieselChange.SignedString()})
	}
	if row.SpreadAbs != nil {
		summary.Rows = append(summary.Rows, []string{"Weekly spread (abs)", dailydiesel.USD(*row.SpreadAbs).String()})
	}
	if row.SpreadPct != nil {
		summary.Rows = append(summary.Rows, []string{"Weekly spread (rel)", row.SpreadPct.String()})
	}
	if row.BrentMA7 != nil {
		summary.Rows = append(summary.Rows, []string{"Brent 7-day mean", dailydiesel.USD(*row.BrentMA7).String()})
	}
	if row.BrentMA30 != nil {
		summary.Rows = append(summary.Rows, []string{"Brent 30-day mean", dailydiesel.USD(*row.BrentMA30).String()})
	}
	if row.DieselMA7 != nil {
		summary.Rows = append(summary.Rows, []string{"Diesel 7-day mean", dailydiesel.USD(*row.DieselMA7).String()})
	}
	if row.DieselMA30 != nil {
		summary.Rows = append(summary.Rows, []string{"Diesel 30-day mean", dailydiesel.USD(*row.DieselMA30).String()})
	}
	doc.Table(summary)

	if tail := tailRows(rows, on, historyRows); len(tail) > 0 {
		doc.H2("Last 7 Days")
		doc.Table(HistoryTable(tail))
	}

	return doc.String()
}

// StatusMarkdown renders the heartbeat record and the tail of the ledger.
func StatusMarkdown(rec dailydiesel.HeartbeatRecord, rows []dailydiesel.Row) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Daily Diesel Status")

	status := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Field", "Value"},
		Rows: [][]string{
			{"State", rec.Status().String()},
			{"Last run", orDash(formatTime(rec))},
			{"Last success", orDash(dateCell(rec.LastSuccess))},
			{"Last error", orDash(dateCell(rec.LastError))},
			{"Last error message", orDash(rec.LastErrorMessage)},
		},
	}
	doc.Table(status)

	if len(rows) > 0 {
		doc.H2("Latest Ledger Rows")
		start := len(rows) - historyRows
		if start < 0 {
			start = 0
		}
		doc.Table(HistoryTable(rows[start:]))
	} else {
		doc.PlainText("The ledger is empty.")
	}

	return doc.String()
}

// HistoryTable lays out ledger rows as a markdown table, most recent last.
func HistoryTable(rows []dailydiesel.Row) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Date", "Brent", "Diesel", "Δ Brent", "Δ Diesel", "Spread"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Date.String(),
			dailydiesel.USD(r.Brent).String(),
			dailydiesel.USD(r.Diesel).String(),
			percentOrDash(r.BrentChange),
			percentOrDash(r.DieselChange),
			spreadCell(r),
		})
	}
	return table
}

func findRow(rows []dailydiesel.Row, on date.Date) (dailydiesel.Row, bool) {
	for _, r := range rows {
		if r.Date == on {
			return r, true
		}
	}
	return dailydiesel.Row{}, false
}

// tailRows returns up to n rows ending at 'on' (or at the latest row before
// it).
func tailRows(rows []dailydiesel.Row, on date.Date, n int) []dailydiesel.Row {
	end := len(rows)
	for i := len(rows) - 1; i >= 0; i-- {
		if !rows[i].Date.After(on) {
			end = i + 1
			break
		}
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	return rows[start:end]
}

func percentOrDash(p *dailydiesel.Percent) string {
	if p == nil {
		return "-"
	}
	return p.SignedString()
}

func spreadCell(r dailydiesel.Row) string {
	if r.SpreadAbs == nil {
		return "-"
	}
	return dailydiesel.USD(*r.SpreadAbs).String()
}

func dateCell(d date.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func formatTime(rec dailydiesel.HeartbeatRecord) string {
	if rec.LastRun.IsZero() {
		return ""
	}
	return rec.LastRun.Format("2006-01-02 15:04:05 -0700")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

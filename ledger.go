package dailydiesel

import (
	"slices"

	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/shopspring/decimal"
)

// Row is one calendar date's record in the ledger.
//
// Pointer fields are "undefined" cells: day-over-day changes have no meaning
// on the first row, moving averages need a full trailing window, and spreads
// exist only on reporting days.
type Row struct {
	Date         date.Date
	ISOWeek      int
	Brent        decimal.Decimal // USD/bbl
	Diesel       decimal.Decimal // USD/bbl, possibly carried forward
	BrentChange  *Percent
	DieselChange *Percent
	BrentMA7     *decimal.Decimal
	BrentMA30    *decimal.Decimal
	DieselMA7    *decimal.Decimal
	DieselMA30   *decimal.Decimal
	ReportingDay bool
	SpreadAbs    *decimal.Decimal // Diesel - Brent, reporting days only
	SpreadPct    *Percent         // Diesel/Brent - 1, reporting days only
}

// windows of the trailing moving averages, in rows (strict: the mean is
// undefined until the window is full).
const (
	shortWindow = 7
	longWindow  = 30
)

// Ledger is the date-indexed table of daily rows. Rows are unique per date,
// kept in ascending date order, and never deleted. Mutations go through
// Merge and BackfillTo; derived columns are rebuilt wholesale by Recompute.
type Ledger struct {
	rows     []Row
	schedule Schedule
}

// NewLedger returns an empty ledger using the given reporting schedule.
func NewLedger(s Schedule) *Ledger {
	return &Ledger{schedule: s}
}

// Len returns the number of rows.
func (l *Ledger) Len() int { return len(l.rows) }

// Rows returns a copy of all rows in ascending date order.
func (l *Ledger) Rows() []Row { return slices.Clone(l.rows) }

// Last returns the most recent row, if any.
func (l *Ledger) Last() (Row, bool) {
	if len(l.rows) == 0 {
		return Row{}, false
	}
	return l.rows[len(l.rows)-1], true
}

// Get returns the row for the given date, if any.
func (l *Ledger) Get(on date.Date) (Row, bool) {
	i, found := l.search(on)
	if !found {
		return Row{}, false
	}
	return l.rows[i], true
}

func (l *Ledger) search(on date.Date) (int, bool) {
	return slices.BinarySearchFunc(l.rows, on, func(r Row, d date.Date) int {
		return r.Date.Compare(d)
	})
}

// Merge records one day's prices (both already USD/bbl) under the reference
// date 'on'. It is idempotent: when a row for that date already exists no
// new row is created. The one refresh allowed on an existing row is the
// reporting spread: if the day turns out to be a reporting day, the flag and
// spreads are (re)computed from the supplied values, covering the case where
// the row was first written before the flag could be set.
//
// 'executed' is the run-cycle's execution date, needed by schedules keyed on
// it. Merge returns true when a new row was appended.
//
// Derived columns are not touched here: call Recompute after mutating.
func (l *Ledger) Merge(on date.Date, brent, diesel decimal.Decimal, executed date.Date) bool {
	reporting := l.schedule.ReportingDay(on, executed)

	if i, found := l.search(on); found {
		if reporting {
			l.rows[i].ReportingDay = true
			setSpreads(&l.rows[i], brent, diesel)
		}
		return false
	}

	row := Row{Date: on, Brent: brent, Diesel: diesel, ReportingDay: reporting}
	if reporting {
		setSpreads(&row, brent, diesel)
	}
	l.insert(row)
	return true
}

// BackfillTo inserts one synthetic row per missing calendar date, from the
// ledger's first date through target (or through the last date, whichever is
// later), so the ledger always holds one row per day. Interior gaps count:
// merging today's observation after a week-long outage leaves the outage
// days missing in the middle, and they are filled here. Each synthetic row
// carries the preceding row's prices forward verbatim (no interpolation).
// The reporting flag and spreads are evaluated against each row's own date:
// a synthetic row has no run-cycle of its own, so the execution-date policy
// degenerates to the row date.
//
// BackfillTo returns the number of synthetic rows inserted. An empty ledger
// has no known prices, so there is nothing to fill.
func (l *Ledger) BackfillTo(target date.Date) int {
	if len(l.rows) == 0 {
		return 0
	}
	first := l.rows[0]
	end := date.Max(target, l.rows[len(l.rows)-1].Date)

	out := make([]Row, 0, len(l.rows))
	brent, diesel := first.Brent, first.Diesel
	added, i := 0, 0
	for on := first.Date; !on.After(end); on = on.Add(1) {
		if i < len(l.rows) && l.rows[i].Date == on {
			brent, diesel = l.rows[i].Brent, l.rows[i].Diesel
			out = append(out, l.rows[i])
			i++
			continue
		}
		row := Row{Date: on, Brent: brent, Diesel: diesel}
		if l.schedule.ReportingDay(on, on) {
			row.ReportingDay = true
			setSpreads(&row, brent, diesel)
		}
		out = append(out, row)
		added++
	}
	l.rows = out
	return added
}

// insert places a row at its sorted position. The caller guarantees the
// date is not already present.
func (l *Ledger) insert(row Row) {
	i, _ := l.search(row.Date)
	l.rows = slices.Insert(l.rows, i, row)
}

// setSpreads computes the reporting-day spread columns from the supplied
// prices: absolute (diesel - brent) and relative (diesel/brent - 1).
func setSpreads(row *Row, brent, diesel decimal.Decimal) {
	abs := diesel.Sub(brent)
	row.SpreadAbs = &abs
	if !brent.IsZero() {
		pct := Percent(diesel.Div(brent).Sub(decimal.NewFromInt(1)).InexactFloat64())
		row.SpreadPct = &pct
	}
}

// Recompute rebuilds every derived column from the complete row set, in
// ascending date order. It is total and deterministic: the same rows always
// produce the same output, which is what makes replays and idempotence
// checks possible. Previously derived values are discarded, never patched.
func (l *Ledger) Recompute() {
	for i := range l.rows {
		row := &l.rows[i]

		_, week := row.Date.ISOWeek()
		row.ISOWeek = week

		row.BrentChange = nil
		row.DieselChange = nil
		row.BrentMA7 = nil
		row.BrentMA30 = nil
		row.DieselMA7 = nil
		row.DieselMA30 = nil

		if i > 0 {
			prev := l.rows[i-1]
			row.BrentChange = changePct(prev.Brent, row.Brent)
			row.DieselChange = changePct(prev.Diesel, row.Diesel)
		}

		row.BrentMA7 = l.trailingMean(i, shortWindow, func(r Row) decimal.Decimal { return r.Brent })
		row.BrentMA30 = l.trailingMean(i, longWindow, func(r Row) decimal.Decimal { return r.Brent })
		row.DieselMA7 = l.trailingMean(i, shortWindow, func(r Row) decimal.Decimal { return r.Diesel })
		row.DieselMA30 = l.trailingMean(i, longWindow, func(r Row) decimal.Decimal { return r.Diesel })
	}
}

// changePct returns the fractional day-over-day change, or nil when the
// preceding price is missing (zero).
func changePct(prev, cur decimal.Decimal) *Percent {
	if prev.IsZero() {
		return nil
	}
	p := Percent(cur.Div(prev).Sub(decimal.NewFromInt(1)).InexactFloat64())
	return &p
}

// trailingMean returns the mean of the window ending at index i inclusive,
// or nil while fewer than 'window' rows exist.
func (l *Ledger) trailingMean(i, window int, price func(Row) decimal.Decimal) *decimal.Decimal {
	if i+1 < window {
		return nil
	}
	sum := decimal.Zero
	for _, r := range l.rows[i+1-window : i+1] {
		sum = sum.Add(price(r))
	}
	mean := sum.Div(decimal.NewFromInt(int64(window)))
	return &mean
}

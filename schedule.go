package dailydiesel

import (
	"strings"
	"time"

	"github.com/Thiagoscocco/DAILY-DIESEL/date"
)

// DecisionBasis selects which date decides the weekly reporting flag.
//
// Both policies exist in production: flagging the date the prices were
// observed, or flagging based on the day the process actually runs. The
// choice is explicit configuration, never hardcoded.
type DecisionBasis int

const (
	// ObservationDate evaluates the reporting weekday against the priced
	// observation's own date.
	ObservationDate DecisionBasis = iota
	// ExecutionDate evaluates the reporting weekday against the day the
	// run-cycle executes.
	ExecutionDate
)

// Schedule decides whether a date is a reporting day: the weekly gate for
// spread finalization and the notification email.
type Schedule struct {
	Weekday time.Weekday
	Basis   DecisionBasis
}

// weekdaySymbols maps the three-letter configuration symbols to weekdays.
var weekdaySymbols = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

// ParseWeekday reads a weekday symbol (MON..SUN). Unset or unrecognized
// symbols default to Friday.
func ParseWeekday(sym string) time.Weekday {
	if w, ok := weekdaySymbols[strings.ToUpper(strings.TrimSpace(sym))]; ok {
		return w
	}
	return time.Friday
}

// ParseBasis reads a decision-basis symbol. Unset defaults to the execution
// date, the behavior of the daily catch-up variant.
func ParseBasis(sym string) DecisionBasis {
	if strings.EqualFold(strings.TrimSpace(sym), "observation") {
		return ObservationDate
	}
	return ExecutionDate
}

// ReportingDay reports whether the row keyed by 'observed' is a reporting
// day, given the run-cycle's execution date. Pure and total.
func (s Schedule) ReportingDay(observed, executed date.Date) bool {
	on := observed
	if s.Basis == ExecutionDate {
		on = executed
	}
	return on.Weekday() == s.Weekday
}

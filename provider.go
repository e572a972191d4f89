package dailydiesel

import (
	"context"

	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/shopspring/decimal"
)

// Observation is a single dated price point as reported by a provider, in
// the series' native unit.
type Observation struct {
	Date  date.Date
	Value decimal.Decimal
}

// PriceSource yields raw observations for a named series. Implementations
// classify network and parse failures as ErrSourceUnavailable; the engine
// treats those as propagated failures, never as a silently skipped day.
type PriceSource interface {
	// Latest returns the most recent numeric observation of the series.
	Latest(ctx context.Context, seriesID string) (Observation, error)
	// Range returns all numeric observations within r, ascending by date.
	Range(ctx context.Context, seriesID string, r date.Range) ([]Observation, error)
}

// Snapshot is what a Notifier delivers on a reporting day: the rows as
// persisted, the reference date of the report, and the path of the ledger
// file to attach.
type Snapshot struct {
	On         date.Date
	Rows       []Row
	LedgerPath string
}

// Notifier delivers the weekly snapshot to the configured recipients.
// Failures are ErrNotify; they never corrupt the already persisted ledger.
type Notifier interface {
	Send(ctx context.Context, snap Snapshot) error
}

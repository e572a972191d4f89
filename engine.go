package dailydiesel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RunMode selects one of the run-cycle variants. There is a single engine
// parameterized by mode, not one flow per entry point.
type RunMode int

const (
	// ModeSingleDay merges the latest observation of each series under
	// max(series dates) and stops there.
	ModeSingleDay RunMode = iota
	// ModeDailyCatchUp is ModeSingleDay plus a forward-fill of every missing
	// calendar day up to today, covering outages and missed runs.
	ModeDailyCatchUp
	// ModeRangeBackfill fetches both series over an explicit date range and
	// merges every date the two series have in common.
	ModeRangeBackfill
)

func (m RunMode) String() string {
	switch m {
	case ModeSingleDay:
		return "single-day"
	case ModeDailyCatchUp:
		return "daily-catch-up"
	case ModeRangeBackfill:
		return "range-backfill"
	default:
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
}

// RunRequest describes one run-cycle.
type RunRequest struct {
	Mode RunMode
	// Range bounds ModeRangeBackfill fetches; ignored by the other modes.
	Range date.Range
	// Notify sends the weekly email when the reporting gate passes.
	Notify bool
}

// RunResult summarizes a completed run-cycle.
type RunResult struct {
	// RefDate is the reference date of the most recent merged observation.
	RefDate date.Date
	// Merged counts rows created from real observations.
	Merged int
	// Backfilled counts synthetic forward-filled rows appended.
	Backfilled int
	// Notified counts notifications delivered.
	Notified int
	// NotifyErr is a delivery failure caught during the cycle. It is
	// recorded in the heartbeat but does not roll back the persisted ledger.
	NotifyErr error
}

// Engine drives one full run-cycle: fetch, merge, backfill, recompute,
// persist, optionally notify, and record the outcome in the heartbeat.
// Single writer, no internal concurrency: each run either completes or
// fails outright, and a failure leaves the ledger at its last persisted
// state.
type Engine struct {
	source    PriceSource
	notifier  Notifier // nil disables notifications
	heartbeat *HeartbeatStore
	schedule  Schedule
	unit      Unit

	brentSeries  string
	dieselSeries string
	ledgerPath   string

	now func() time.Time // injectable clock
}

// NewEngine wires an engine from the validated configuration and its
// collaborators. The notifier may be nil when sending is not configured.
func NewEngine(cfg Config, source PriceSource, notifier Notifier) (*Engine, error) {
	unit, err := cfg.Unit()
	if err != nil {
		return nil, err
	}
	return &Engine{
		source:       source,
		notifier:     notifier,
		heartbeat:    NewHeartbeatStore(cfg.HeartbeatPath),
		schedule:     cfg.Schedule(),
		unit:         unit,
		brentSeries:  cfg.BrentSeries,
		dieselSeries: cfg.DieselSeries,
		ledgerPath:   cfg.LedgerPath,
		now:          time.Now,
	}, nil
}

// Run executes one cycle and records exactly one heartbeat outcome.
//
// Fetch and persistence errors abort the cycle and surface to the caller
// after a failure heartbeat. A notification failure is caught, recorded as
// a failure, and reported in RunResult.NotifyErr: the ledger update and the
// notification are independent commit points.
func (e *Engine) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	res, err := e.cycle(ctx, req)
	if err != nil {
		log.Error().Err(err).Stringer("mode", req.Mode).Msg("run-cycle failed")
		if hbErr := e.heartbeat.RecordFailure(err.Error()); hbErr != nil {
			log.Error().Err(hbErr).Msg("could not record failure heartbeat")
		}
		return res, err
	}

	if res.NotifyErr != nil {
		log.Error().Err(res.NotifyErr).Msg("notification failed; ledger remains persisted")
		if hbErr := e.heartbeat.RecordFailure(res.NotifyErr.Error()); hbErr != nil {
			log.Error().Err(hbErr).Msg("could not record failure heartbeat")
		}
		return res, nil
	}

	if hbErr := e.heartbeat.RecordSuccess(); hbErr != nil {
		log.Error().Err(hbErr).Msg("could not record success heartbeat")
		return res, hbErr
	}
	log.Info().
		Stringer("mode", req.Mode).
		Stringer("ref", res.RefDate).
		Int("merged", res.Merged).
		Int("backfilled", res.Backfilled).
		Int("notified", res.Notified).
		Msg("run-cycle completed")
	return res, nil
}

func (e *Engine) cycle(ctx context.Context, req RunRequest) (RunResult, error) {
	switch req.Mode {
	case ModeSingleDay, ModeDailyCatchUp:
		return e.daily(ctx, req)
	case ModeRangeBackfill:
		return e.rangeBackfill(ctx, req)
	default:
		return RunResult{}, fmt.Errorf("%w: unknown run mode %d", ErrConfiguration, int(req.Mode))
	}
}

// daily implements the single-day and daily-catch-up variants.
func (e *Engine) daily(ctx context.Context, req RunRequest) (RunResult, error) {
	var res RunResult
	today := date.FromTime(e.now())

	brent, err := e.source.Latest(ctx, e.brentSeries)
	if err != nil {
		return res, err
	}
	diesel, err := e.source.Latest(ctx, e.dieselSeries)
	if err != nil {
		return res, err
	}
	dieselBBL, err := ToBarrel(diesel.Value, e.unit)
	if err != nil {
		return res, err
	}

	// The row's key is the later of the two per-series observation dates.
	ref := date.Max(brent.Date, diesel.Date)
	res.RefDate = ref
	log.Info().
		Stringer("brent", brent.Date).Str("brent_usd_bbl", brent.Value.String()).
		Stringer("diesel", diesel.Date).Str("diesel_usd_bbl", dieselBBL.String()).
		Msg("fetched latest observations")

	ledger, err := LoadLedger(e.ledgerPath, e.schedule)
	if err != nil {
		return res, err
	}

	if ledger.Merge(ref, brent.Value, dieselBBL, today) {
		res.Merged = 1
	}
	if req.Mode == ModeDailyCatchUp {
		res.Backfilled = ledger.BackfillTo(today)
	}
	ledger.Recompute()
	if err := SaveLedger(e.ledgerPath, ledger); err != nil {
		return res, err
	}

	if req.Notify && e.schedule.ReportingDay(ref, today) {
		if err := e.send(ctx, ledger, ref); err != nil {
			res.NotifyErr = err
		} else {
			res.Notified = 1
		}
	}
	return res, nil
}

// rangeBackfill fetches both series over the requested range and merges the
// dates they have in common, ascending.
func (e *Engine) rangeBackfill(ctx context.Context, req RunRequest) (RunResult, error) {
	var res RunResult

	if req.Range.From.IsZero() || req.Range.To.IsZero() {
		return res, fmt.Errorf("%w: backfill requires both range bounds", ErrConfiguration)
	}
	if req.Range.From.After(req.Range.To) {
		return res, fmt.Errorf("%w: backfill range starts after it ends", ErrConfiguration)
	}

	brentObs, err := e.source.Range(ctx, e.brentSeries, req.Range)
	if err != nil {
		return res, err
	}
	dieselObs, err := e.source.Range(ctx, e.dieselSeries, req.Range)
	if err != nil {
		return res, err
	}

	var brent, diesel date.History[decimal.Decimal]
	for _, o := range brentObs {
		brent.Append(o.Date, o.Value)
	}
	for _, o := range dieselObs {
		v, err := ToBarrel(o.Value, e.unit)
		if err != nil {
			return res, err
		}
		diesel.Append(o.Date, v)
	}

	ledger, err := LoadLedger(e.ledgerPath, e.schedule)
	if err != nil {
		return res, err
	}

	// Only dates present in both series become rows. Historical rows have no
	// run-cycle of their own, so each is evaluated against its own date (the
	// execution-date policy degenerates to the row date, as in BackfillTo).
	var reportingDays []date.Date
	for on, b := range brent.Values() {
		d, ok := diesel.Get(on)
		if !ok {
			continue
		}
		if ledger.Merge(on, b, d, on) {
			res.Merged++
		}
		res.RefDate = on
		if req.Notify && e.schedule.ReportingDay(on, on) {
			reportingDays = append(reportingDays, on)
		}
	}
	if res.RefDate.IsZero() {
		return res, fmt.Errorf("%w: no common dates between the two series in the requested range", ErrSourceUnavailable)
	}

	ledger.Recompute()
	if err := SaveLedger(e.ledgerPath, ledger); err != nil {
		return res, err
	}

	var notifyErrs error
	for _, on := range reportingDays {
		if err := e.send(ctx, ledger, on); err != nil {
			notifyErrs = errors.Join(notifyErrs, err)
			continue
		}
		res.Notified++
	}
	res.NotifyErr = notifyErrs
	return res, nil
}

// send delivers the snapshot for the given reference date.
func (e *Engine) send(ctx context.Context, ledger *Ledger, on date.Date) error {
	if e.notifier == nil {
		return fmt.Errorf("%w: no notifier configured", ErrNotify)
	}
	snap := Snapshot{On: on, Rows: ledger.Rows(), LedgerPath: e.ledgerPath}
	if err := e.notifier.Send(ctx, snap); err != nil {
		if errors.Is(err, ErrNotify) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	log.Info().Stringer("on", on).Msg("weekly notification sent")
	return nil
}

package dailydiesel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Thiagoscocco/DAILY-DIESEL/date"
	"github.com/shopspring/decimal"
)

// The ledger's persisted representation is a CSV table, one row per date,
// with this fixed column order. Undefined cells are empty. The column labels
// are presentation only; position is what matters.
var ledgerColumns = []string{
	"date",
	"iso_week",
	"brent_usd_bbl",
	"diesel_usd_bbl",
	"brent_change_pct",
	"diesel_change_pct",
	"brent_ma7",
	"brent_ma30",
	"diesel_ma7",
	"diesel_ma30",
	"reporting_day",
	"spread_abs_usd",
	"spread_pct",
}

// EncodeLedger writes the ledger as CSV, header first, rows in ascending
// date order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerColumns); err != nil {
		return err
	}
	for _, row := range l.rows {
		record := []string{
			row.Date.String(),
			strconv.Itoa(row.ISOWeek),
			row.Brent.String(),
			row.Diesel.String(),
			percentCell(row.BrentChange),
			percentCell(row.DieselChange),
			decimalCell(row.BrentMA7),
			decimalCell(row.BrentMA30),
			decimalCell(row.DieselMA7),
			decimalCell(row.DieselMA30),
			flagCell(row.ReportingDay),
			decimalCell(row.SpreadAbs),
			percentCell(row.SpreadPct),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeLedger reads a CSV ledger produced by EncodeLedger. The header row
// is required; every data row must have the full column count.
func DecodeLedger(r io.Reader, s Schedule) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ledgerColumns)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed ledger: %w", err)
	}
	if len(records) == 0 {
		return NewLedger(s), nil
	}
	if records[0][0] != ledgerColumns[0] {
		return nil, fmt.Errorf("malformed ledger: unexpected header %q", records[0][0])
	}

	ledger := NewLedger(s)
	for n, record := range records[1:] {
		row, err := decodeRow(record)
		if err != nil {
			return nil, fmt.Errorf("malformed ledger row %d: %w", n+2, err)
		}
		if _, dup := ledger.Get(row.Date); dup {
			return nil, fmt.Errorf("malformed ledger row %d: duplicate date %s", n+2, row.Date)
		}
		ledger.insert(row)
	}
	return ledger, nil
}

func decodeRow(record []string) (Row, error) {
	var row Row
	var err error

	if row.Date, err = date.Parse(record[0]); err != nil {
		return Row{}, err
	}
	if row.ISOWeek, err = strconv.Atoi(record[1]); err != nil {
		return Row{}, fmt.Errorf("iso_week: %w", err)
	}
	if row.Brent, err = decimal.NewFromString(record[2]); err != nil {
		return Row{}, fmt.Errorf("brent_usd_bbl: %w", err)
	}
	if row.Diesel, err = decimal.NewFromString(record[3]); err != nil {
		return Row{}, fmt.Errorf("diesel_usd_bbl: %w", err)
	}
	if row.BrentChange, err = parsePercentCell(record[4]); err != nil {
		return Row{}, fmt.Errorf("brent_change_pct: %w", err)
	}
	if row.DieselChange, err = parsePercentCell(record[5]); err != nil {
		return Row{}, fmt.Errorf("diesel_change_pct: %w", err)
	}
	if row.BrentMA7, err = parseDecimalCell(record[6]); err != nil {
		return Row{}, fmt.Errorf("brent_ma7: %w", err)
	}
	if row.BrentMA30, err = parseDecimalCell(record[7]); err != nil {
		return Row{}, fmt.Errorf("brent_ma30: %w", err)
	}
	if row.DieselMA7, err = parseDecimalCell(record[8]); err != nil {
		return Row{}, fmt.Errorf("diesel_ma7: %w", err)
	}
	if row.DieselMA30, err = parseDecimalCell(record[9]); err != nil {
		return Row{}, fmt.Errorf("diesel_ma30: %w", err)
	}
	row.ReportingDay = record[10] == "1"
	if row.SpreadAbs, err = parseDecimalCell(record[11]); err != nil {
		return Row{}, fmt.Errorf("spread_abs_usd: %w", err)
	}
	if row.SpreadPct, err = parsePercentCell(record[12]); err != nil {
		return Row{}, fmt.Errorf("spread_pct: %w", err)
	}
	return row, nil
}

func decimalCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func percentCell(p *Percent) string {
	if p == nil {
		return ""
	}
	return p.cell()
}

func flagCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseDecimalCell(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parsePercentCell(s string) (*Percent, error) {
	if s == "" {
		return nil, nil
	}
	p, err := parsePercent(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadLedger reads the ledger file. A missing file yields an empty ledger;
// a malformed file is a persistence error to the caller.
func LoadLedger(path string, s Schedule) (*Ledger, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewLedger(s), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open ledger %q: %v", ErrPersistence, path, err)
	}
	defer f.Close()

	ledger, err := DecodeLedger(f, s)
	if err != nil {
		return nil, fmt.Errorf("%w: read ledger %q: %v", ErrPersistence, path, err)
	}
	return ledger, nil
}

// SaveLedger writes the whole ledger file atomically: the new content goes
// to a temp file in the same directory, then replaces the old file in one
// rename. A failed cycle leaves the previous ledger intact.
func SaveLedger(path string, l *Ledger) error {
	if err := ensureParentDir(path); err != nil {
		return fmt.Errorf("%w: create ledger dir for %q: %v", ErrPersistence, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: write ledger %q: %v", ErrPersistence, path, err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeLedger(tmp, l); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write ledger %q: %v", ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write ledger %q: %v", ErrPersistence, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: replace ledger %q: %v", ErrPersistence, path, err)
	}
	return nil
}

// ensureParentDir creates the parent directory of path when missing.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

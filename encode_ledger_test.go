package dailydiesel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger(fridaySchedule)
	on := d("2024-01-01")
	for i := range 10 {
		price := dec("80").Add(dec("0.5").Mul(decimal.NewFromInt(int64(i))))
		l.Merge(on.Add(i), price, price.Add(dec("20")), on.Add(i))
	}
	l.Recompute()
	return l
}

func TestLedgerRoundTrip(t *testing.T) {
	l := sampleLedger(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeLedger(&buf, l))
	encoded := buf.String()

	decoded, err := DecodeLedger(strings.NewReader(encoded), fridaySchedule)
	require.NoError(t, err)
	require.Equal(t, l.Len(), decoded.Len())

	// Re-encoding the decoded ledger must reproduce the file byte for byte.
	var again bytes.Buffer
	require.NoError(t, EncodeLedger(&again, decoded))
	assert.Equal(t, encoded, again.String())
}

func TestDecodeLedgerEmptyInput(t *testing.T) {
	l, err := DecodeLedger(strings.NewReader(""), fridaySchedule)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestDecodeLedgerRejectsBadHeader(t *testing.T) {
	_, err := DecodeLedger(strings.NewReader("a,b,c\n"), fridaySchedule)
	require.Error(t, err)
}

func TestDecodeLedgerRejectsDuplicateDates(t *testing.T) {
	var buf bytes.Buffer
	l := NewLedger(fridaySchedule)
	l.Merge(d("2024-01-03"), dec("80"), dec("100"), d("2024-01-03"))
	require.NoError(t, EncodeLedger(&buf, l))

	// Duplicate the single data row.
	lines := strings.SplitAfter(buf.String(), "\n")
	corrupted := strings.Join(lines, "") + lines[1]

	_, err := DecodeLedger(strings.NewReader(corrupted), fridaySchedule)
	require.ErrorContains(t, err, "duplicate date")
}

func TestLoadLedgerMissingFile(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "nope.csv"), fridaySchedule)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestLoadLedgerMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("not,a,ledger\n1,2\n"), 0o644))

	_, err := LoadLedger(path, fridaySchedule)
	require.ErrorIs(t, err, ErrPersistence)
}

func TestSaveAndLoadLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "ledger.csv")
	l := sampleLedger(t)

	require.NoError(t, SaveLedger(path, l))

	loaded, err := LoadLedger(path, fridaySchedule)
	require.NoError(t, err)
	require.Equal(t, l.Len(), loaded.Len())

	want, _ := l.Last()
	got, _ := loaded.Last()
	assert.Equal(t, want.Date, got.Date)
	assert.True(t, want.Brent.Equal(got.Brent))
	assert.True(t, want.Diesel.Equal(got.Diesel))
	assert.Equal(t, want.ReportingDay, got.ReportingDay)
}

func TestSaveLedgerReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")

	require.NoError(t, SaveLedger(path, sampleLedger(t)))
	require.NoError(t, SaveLedger(path, sampleLedger(t)))

	// No temp file debris after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger.csv", entries[0].Name())
}

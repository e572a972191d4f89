package dailydiesel

import (
	"fmt"
	"strconv"
)

// Percent is a fractional ratio: 0.03 means +3%.
type Percent float64

// Equal compares two percents with a fixed precision.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p)*100)
}

// SignedString renders the percent with an explicit sign, or "-" for zero.
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p)*100)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// cell renders the raw fractional value, as persisted in the ledger file.
func (p Percent) cell() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// parsePercent reads back a raw fractional value from a ledger cell.
func parsePercent(s string) (Percent, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return Percent(v), nil
}

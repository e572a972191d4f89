package dailydiesel

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a monetary value used for display purposes in reports. Ledger
// arithmetic stays on decimal.Decimal; Money only carries the currency for
// proper formatting.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M builds a Money from a decimal value and an ISO currency code.
func M(value decimal.Decimal, currency string) Money {
	return Money{value: value, cur: currency}
}

// USD builds a US dollar Money, the only currency of the two tracked series.
func USD(value decimal.Decimal) Money { return M(value, money.USD) }

// currency resolves the full currency description, never nil.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String formats the value with the currency's symbol and fraction digits.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

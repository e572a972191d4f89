package dailydiesel

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the quotation unit of a price series.
type Unit string

const (
	UnitBarrel Unit = "BBL"
	UnitGallon Unit = "GAL"
)

// gallonsPerBarrel is the fixed volumetric conversion factor (42 US gallons
// per barrel).
var gallonsPerBarrel = decimal.NewFromInt(42)

// ParseUnit reads a unit symbol. The empty string defaults to GAL, matching
// the diesel series' usual quotation. Any other unknown symbol is a
// configuration error: there is deliberately no silent fallback.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return UnitGallon, nil
	case "GAL", "GALLON":
		return UnitGallon, nil
	case "BBL", "BARREL":
		return UnitBarrel, nil
	default:
		return "", fmt.Errorf("%w: unknown price unit %q (want GAL or BBL)", ErrConfiguration, s)
	}
}

// ToBarrel converts a price to a barrel-denominated price: identity for BBL,
// multiplied by the 42 gal/bbl factor for GAL.
func ToBarrel(value decimal.Decimal, unit Unit) (decimal.Decimal, error) {
	switch unit {
	case UnitBarrel:
		return value, nil
	case UnitGallon:
		return value.Mul(gallonsPerBarrel), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: unknown price unit %q (want GAL or BBL)", ErrConfiguration, unit)
	}
}

// Package money converts between decimal amounts at the API boundary and the
// int64 minor units (cents) the ledger stores.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept in minor units.
const Scale = 2

var (
	// ErrTooPrecise is returned when an amount has more fractional digits than Scale.
	ErrTooPrecise = errors.New("money: amount has more than 2 decimal places")
	// ErrOutOfRange is returned when an amount does not fit in int64 minor units.
	ErrOutOfRange = errors.New("money: amount out of range")
)

// ToMinor converts d to minor units.
func ToMinor(d decimal.Decimal) (int64, error) {
	if !d.Equal(d.Round(Scale)) {
		return 0, ErrTooPrecise
	}
	minor := d.Shift(Scale)
	if !minor.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}

// FromMinor converts minor units back to a decimal amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Parse reads a decimal string such as "12.50" into minor units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return ToMinor(d)
}

// Format renders minor units with exactly Scale fractional digits.
func Format(minor int64) string {
	return FromMinor(minor).StringFixed(Scale)
}

// Package money implements integer minor-unit currency amounts.
//
// All storefront arithmetic runs on Amount (paise). Conversion to
// decimal.Decimal is only done at storage, formatting and rounding
// boundaries.
package money

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Symbol is the currency sign used in customer-facing messages.
const Symbol = "₹"

const minorPerUnit = 100

// Amount is a currency amount in minor units (paise).
type Amount int64

// MaxUnits is the largest amount, in currency units, accepted from outside
// the process. Sums of such amounts stay far from int64 overflow.
var MaxUnits = decimal.NewFromInt(1_000_000_000)

// ErrOutOfRange is returned by Parse for negative or oversized amounts.
var ErrOutOfRange = errors.New("amount out of range")

// Parse converts an external decimal amount in currency units. Negative
// values and values above MaxUnits are rejected.
func Parse(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() || d.GreaterThan(MaxUnits) {
		return 0, ErrOutOfRange
	}
	return FromDecimal(d), nil
}

// Zero is the zero amount.
const Zero Amount = 0

// FromUnits converts whole currency units (rupees) to an Amount.
func FromUnits(units int64) Amount {
	return Amount(units * minorPerUnit)
}

// FromDecimal converts a decimal amount in currency units to an Amount,
// rounding half away from zero to the nearest minor unit.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Shift(2).Round(0).IntPart())
}

// FromFloat converts a float amount in currency units. Only used for
// request decoding.
func FromFloat(f float64) Amount {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Decimal returns the amount in currency units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Float64 returns the amount in currency units as a float, for JSON output.
func (a Amount) Float64() float64 {
	return a.Decimal().InexactFloat64()
}

// Times multiplies the amount by an integer quantity.
func (a Amount) Times(qty int) Amount {
	return a * Amount(qty)
}

// RoundUnits rounds the amount half-up to whole currency units.
func (a Amount) RoundUnits() Amount {
	return FromDecimal(a.Decimal().Round(0))
}

// String formats the amount with the currency symbol and no trailing zeros,
// e.g. "₹1499" or "₹499.5".
func (a Amount) String() string {
	var b strings.Builder
	if a < 0 {
		b.WriteByte('-')
		a = -a
	}
	b.WriteString(Symbol)
	b.WriteString(a.Decimal().String())
	return b.String()
}

// Package money holds the fixed-point conversions used across the commission
// engine. Balances and commission amounts are stored as integer cents; rates
// and the distance basis use decimals, rounded half-up at two places when they
// become money.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FromCents converts an integer cents amount to its decimal currency value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// ToCents rounds a decimal currency value half-up to two places and returns
// the integer cents.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}

// Percent returns amount × rate / 100 without rounding; callers round once at
// the end of their accumulation.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// PercentOfCents applies a percentage rate to a cents basis and rounds the
// result half-up to whole cents.
func PercentOfCents(basisCents int64, rate decimal.Decimal) int64 {
	return ToCents(Percent(FromCents(basisCents), rate))
}

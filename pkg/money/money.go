// Package money holds the display helpers for the single supported currency.
// Amounts stay unrounded decimals internally and are rounded to cents only here.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is the number of fractional digits shown to customers.
const Cents = 2

// Round rounds half away from zero to whole cents.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Cents)
}

// Format renders an amount as "$12.34" (negative amounts as "-$12.34").
func Format(amount decimal.Decimal) string {
	rounded := Round(amount)
	if rounded.IsNegative() {
		return "-$" + rounded.Neg().StringFixed(Cents)
	}
	return "$" + rounded.StringFixed(Cents)
}

// PerPeriod renders "$59.90/year".
func PerPeriod(amount decimal.Decimal, period fmt.Stringer) string {
	return Format(amount) + "/" + period.String()
}

// MustParse parses a literal amount, panicking on malformed input. Only for static tables.
func MustParse(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

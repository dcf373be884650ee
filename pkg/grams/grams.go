// Package grams provides precise weight arithmetic for the ledger.
//
// All weights are gram quantities with three decimal places, the precision
// of the shop scale. Values are backed by shopspring/decimal so repeated
// give/return arithmetic never accumulates float error.
package grams

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the smallest sale weight worth recording. A computed sale at
// or below this is treated as a fully returned item (scale jitter).
var Epsilon = decimal.RequireFromString("0.015")

// Round3 rounds a weight to the scale precision of three decimal places.
func Round3(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// ClampSale rounds a computed sale weight and floors it to zero when it is
// at or below Epsilon.
func ClampSale(d decimal.Decimal) decimal.Decimal {
	r := Round3(d)
	if r.LessThanOrEqual(Epsilon) {
		return decimal.Zero
	}
	return r
}

// Parse parses a gram value from its string form.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid weight %q: %w", s, err)
	}
	return d, nil
}

// Format renders a weight with exactly three decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(3)
}

// IsNegative reports whether the weight is below zero.
func IsNegative(d decimal.Decimal) bool {
	return d.IsNegative()
}

// Package money holds the rounding rules shared by normalization and display.
//
// Accumulation elsewhere stays in float64; rounding happens only when a value is
// stored from untrusted input or rendered for people.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v to the given number of decimal places, half away from zero.
// Non-finite input returns 0.
func Round(v float64, places int32) float64 {
	if !Finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Round2 rounds v to cents.
func Round2(v float64) float64 {
	return Round(v, 2)
}

// Fixed2 renders v with exactly two decimals, e.g. "29.25".
func Fixed2(v float64) string {
	if !Finite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NonNegative clamps v to >= 0, mapping non-finite values to 0.
func NonNegative(v float64) float64 {
	if !Finite(v) || v < 0 {
		return 0
	}
	return v
}

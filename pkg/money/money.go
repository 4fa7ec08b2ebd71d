// Package money converts between the integer cents stored in the database and
// the decimal amounts exchanged with clients.
package money

import (
	"github.com/shopspring/decimal"
)

// CentEpsilon is the tolerance used when comparing client reported amounts
// with server computed ones.
const CentEpsilon int64 = 1

// MaxCents is the largest price a catalog row may carry (10,000,000.00).
const MaxCents int64 = 1_000_000_000

var (
	hundred = decimal.NewFromInt(100)

	// MaxAmount is MaxCents as a decimal, for checking input before conversion.
	MaxAmount = FromCents(MaxCents)
)

// ToCents rounds a decimal amount half away from zero to whole cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts cents back to a two-place decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents with exactly two decimal places, e.g. 4000 -> "40.00".
func Format(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// Float returns cents as a float for JSON responses.
func Float(cents int64) float64 {
	f, _ := FromCents(cents).Float64()
	return f
}

// WithinEpsilon reports whether two cent amounts differ by at most CentEpsilon.
func WithinEpsilon(a, b int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= CentEpsilon
}

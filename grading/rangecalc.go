/*
rangecalc.go - Salary range from midpoint and spread

PURPOSE:
  Derives a grade's minimum and maximum from its midpoint and its spread
  (range width as a percentage of the minimum).

FORMULA (symmetric range):
  s   = spread / 100
  min = round( 2*mid / (s+2) )
  max = round( mid*2*(s+1) / (s+2) )

  This keeps mid exactly halfway between min and max ((min+max)/2 = mid)
  while (max-min)/min = s. Rounding is half away from zero to whole units.

DOMAIN:
  Any spread >= 0 is accepted. Callers clamp user input with ClampSpread
  before calling. At spread = -200 the formula has no value; CalculateRange
  returns a zero Range there instead of dividing by zero.

EXAMPLE:
  r := grading.CalculateRange(decimal.NewFromInt(10_000_000), 50)
  // r.Min = 8_000_000, r.Max = 12_000_000

SEE ALSO:
  - overlap.go: Consumes the ranges of adjacent grades
  - recompute.go: Re-runs this for every grade after an edit
*/
package grading

import "github.com/shopspring/decimal"

const (
	// MinSpread and MaxSpread bound user-entered spreads.
	MinSpread = 0
	MaxSpread = 100
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// CalculateRange returns the min/max for a midpoint and spread percent.
func CalculateRange(mid decimal.Decimal, spread int) Range {
	s := SpreadDecimal(spread)
	denom := s.Add(two)
	if denom.IsZero() {
		return Range{}
	}

	min := two.Mul(mid).Div(denom)
	max := mid.Mul(two).Mul(s.Add(decimal.NewFromInt(1))).Div(denom)

	return Range{
		Min: min.Round(0).IntPart(),
		Max: max.Round(0).IntPart(),
	}
}

// RangeFor is CalculateRange for a whole-unit midpoint.
func RangeFor(mid int64, spread int) Range {
	return CalculateRange(decimal.NewFromInt(mid), spread)
}

// SpreadDecimal converts a percent to its decimal fraction (25 -> 0.25).
func SpreadDecimal(spread int) decimal.Decimal {
	return decimal.NewFromInt(int64(spread)).Div(hundred)
}

// ClampSpread bounds a user-entered spread to [MinSpread, MaxSpread].
func ClampSpread(spread int) int {
	if spread < MinSpread {
		return MinSpread
	}
	if spread > MaxSpread {
		return MaxSpread
	}
	return spread
}

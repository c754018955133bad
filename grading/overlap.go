/*
overlap.go - Overlap between adjacent grades

PURPOSE:
  Measures how far each grade's range reaches down into the range of the
  grade directly below it. High overlap means a promotion buys little pay;
  negative overlap means there is a pay gap between the two grades.

FORMULA (grade i with predecessor p):
  raw       = p.Max - i.Min
  rangePrev = p.Max - p.Min
  overlap   = rangePrev > 0 && raw > 0 ? round1(raw / rangePrev * 100) : 0

  Overlap is capped at 100 (a grade reaching below its predecessor's min
  covers it entirely). The first grade always has overlap 0. OverlapRaw
  keeps the signed, uncapped value
  (round1(raw / rangePrev * 100), 0 when rangePrev <= 0) so a gap can be
  told apart from a true zero overlap.

SEE ALSO:
  - rangecalc.go: Produces the Min/Max consumed here
  - diagnostics.go: Flags high overlap and pay gaps
*/
package grading

import "github.com/shopspring/decimal"

// ApplyOverlap returns a copy of grades with Overlap and OverlapRaw set.
// Grades must be ordered ascending by ID.
func ApplyOverlap(grades []Grade) []Grade {
	out := Clone(grades)
	for i := range out {
		if i == 0 {
			out[i].Overlap = decimal.Zero
			out[i].OverlapRaw = decimal.Zero
			continue
		}
		out[i].OverlapRaw = signedOverlap(out[i-1], out[i])
		out[i].Overlap = clampedOverlap(out[i-1], out[i])
	}
	return out
}

func clampedOverlap(prev, curr Grade) decimal.Decimal {
	raw := prev.Max - curr.Min
	rangePrev := prev.Max - prev.Min
	if rangePrev <= 0 || raw <= 0 {
		return decimal.Zero
	}
	// A grade whose min sits below its predecessor's min fully covers it.
	return decimal.Min(percentOf(raw, rangePrev), hundred)
}

func signedOverlap(prev, curr Grade) decimal.Decimal {
	rangePrev := prev.Max - prev.Min
	if rangePrev <= 0 {
		return decimal.Zero
	}
	return percentOf(prev.Max-curr.Min, rangePrev)
}

// percentOf returns part/whole*100 rounded to one decimal place.
func percentOf(part, whole int64) decimal.Decimal {
	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(whole)).
		Mul(hundred).
		Round(1)
}

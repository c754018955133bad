/*
recompute.go - Recompute-on-write for grade edits

PURPOSE:
  Keeps every derived grade field consistent after a user edits a grade.

EDIT CLASSES:
  Point edit (Mid or Spread):
    Range is recomputed for EVERY grade, then overlap is recomputed across
    the whole list. Overlap depends on the predecessor, so patching only
    the edited grade would leave the grade above it stale.

  Cosmetic edit (Name):
    Applied as-is. Nothing is recomputed.

  Structural changes (method, parameter, jobs, factors) are not edits: the
  session discards the list and runs Build again.

IDEMPOTENCE:
  Recompute(Recompute(g)) == Recompute(g). Derived fields are a pure
  function of (Mid, Spread) and the order of the list.
*/
package grading

import "fmt"

// Recompute rebuilds Min/Max for every grade, then overlap for the list.
func Recompute(grades []Grade) []Grade {
	out := Clone(grades)
	for i := range out {
		r := RangeFor(out[i].Mid, out[i].Spread)
		out[i].Min = r.Min
		out[i].Max = r.Max
	}
	return ApplyOverlap(out)
}

// GradePatch is a user edit to one grade. Nil fields are left unchanged.
type GradePatch struct {
	Name   *string `json:"name,omitempty"`
	Mid    *int64  `json:"mid,omitempty"`
	Spread *int    `json:"spread,omitempty"`
}

// TriggersRecompute reports whether the patch touches a pay input.
func (p GradePatch) TriggersRecompute() bool {
	return p.Mid != nil || p.Spread != nil
}

// ApplyEdit returns a copy of grades with patch applied to grade id.
// Spread is clamped to [MinSpread, MaxSpread]; a non-positive Mid is rejected.
func ApplyEdit(grades []Grade, id int, patch GradePatch) ([]Grade, error) {
	idx := FindGrade(grades, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrGradeNotFound, id)
	}
	if patch.Mid != nil && *patch.Mid <= 0 {
		return nil, fmt.Errorf("%w: mid must be positive, got %d", ErrInvalidEdit, *patch.Mid)
	}

	out := Clone(grades)
	g := &out[idx]
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Mid != nil {
		g.Mid = *patch.Mid
	}
	if patch.Spread != nil {
		g.Spread = ClampSpread(*patch.Spread)
	}

	if !patch.TriggersRecompute() {
		return out, nil
	}
	return Recompute(out), nil
}

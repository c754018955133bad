package grading

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIAGNOSTICS - Structure warnings (never errors)
// =============================================================================

type WarningCode string

const (
	// WarnMinBelowBaseWage: grade minimum is below the statutory base wage.
	WarnMinBelowBaseWage WarningCode = "min_below_base_wage"

	// WarnHighOverlap: overlap with the grade below exceeds HighOverlapThreshold.
	WarnHighOverlap WarningCode = "high_overlap"

	// WarnPayGap: the grade's min is above the max of the grade below.
	WarnPayGap WarningCode = "pay_gap"

	// WarnEmptyGrade: no job is assigned to the grade.
	WarnEmptyGrade WarningCode = "empty_grade"
)

// HighOverlapThreshold is the overlap percent above which a promotion
// into the grade yields little pay increase.
var HighOverlapThreshold = decimal.NewFromInt(50)

type Warning struct {
	GradeID int         `json:"grade_id"`
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Diagnose inspects a finished grade list. A zero baseWage skips the
// base wage check.
func Diagnose(grades []Grade, baseWage int64) []Warning {
	var warnings []Warning
	for _, g := range grades {
		if baseWage > 0 && g.Min < baseWage {
			warnings = append(warnings, Warning{
				GradeID: g.ID,
				Code:    WarnMinBelowBaseWage,
				Message: fmt.Sprintf("%s minimum %d is below base wage %d", g.Name, g.Min, baseWage),
			})
		}
		if g.Overlap.GreaterThan(HighOverlapThreshold) {
			warnings = append(warnings, Warning{
				GradeID: g.ID,
				Code:    WarnHighOverlap,
				Message: fmt.Sprintf("%s overlaps %s%% of the grade below", g.Name, g.Overlap.String()),
			})
		}
		if g.OverlapRaw.IsNegative() {
			warnings = append(warnings, Warning{
				GradeID: g.ID,
				Code:    WarnPayGap,
				Message: fmt.Sprintf("%s starts above the maximum of the grade below", g.Name),
			})
		}
		if len(g.JobTitles) == 0 {
			warnings = append(warnings, Warning{
				GradeID: g.ID,
				Code:    WarnEmptyGrade,
				Message: fmt.Sprintf("%s has no jobs", g.Name),
			})
		}
	}
	return warnings
}

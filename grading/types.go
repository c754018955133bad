/*
Package grading provides the core compensation structure engine.

PURPOSE:
  This package contains method-agnostic types and algorithms for turning an
  evaluated job list into a pay structure. Whether jobs were evaluated by
  point factors or by manual ranking, the same pipeline seeds midpoints,
  derives salary ranges and measures overlap between adjacent grades.

KEY CONCEPTS IN THIS FILE (types.go):
  - Job: An evaluated position (score = points or rank)
  - Grade: A pay band with min / mid / max and its member jobs
  - Method: How jobs were evaluated (point or ranking)
  - Range: The min/max pair derived from a midpoint and spread

DESIGN PRINCIPLES:
  1. Purity: Every calculation is a function over in-memory values
  2. Precision: Intermediate math uses decimal.Decimal, amounts are whole units
  3. Recompute-on-write: Derived fields are rebuilt for the whole list
  4. Method agnostic: Evaluation methods plug in through PartitionPolicy

USAGE:
  grades, err := grading.Build(policy, jobs, seed)
  grades = grading.Recompute(grades)

SEE ALSO:
  - rangecalc.go: Range calculator
  - overlap.go: Overlap calculator
  - policy.go: Partition policies and the build pipeline
  - recompute.go: Edits and recomputation
*/
package grading

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// METHOD - How jobs were evaluated
// =============================================================================

type Method string

const (
	// MethodPoint: score is the sum of compensable factor points.
	MethodPoint Method = "point"

	// MethodRanking: score is a manually assigned rank, 1 = most senior.
	MethodRanking Method = "ranking"
)

func (m Method) Valid() bool {
	return m == MethodPoint || m == MethodRanking
}

// =============================================================================
// JOB - An evaluated position
// =============================================================================

// Job is a position to be placed in the structure.
// Under the point method Score is derived from Factors; under the ranking
// method Score is the rank entered by the user and Factors is ignored.
type Job struct {
	ID      int            `json:"id"`
	Title   string         `json:"title"`
	Note    string         `json:"note,omitempty"`
	Score   int            `json:"score"`
	Factors map[string]int `json:"factors,omitempty"`
}

// NextJobID returns max existing ID + 1, or 1 for an empty list.
func NextJobID(jobs []Job) int {
	next := 1
	for _, j := range jobs {
		if j.ID >= next {
			next = j.ID + 1
		}
	}
	return next
}

// FindJob returns the index of the job with the given ID, or -1.
func FindJob(jobs []Job, id int) int {
	for i, j := range jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

// ScoreBounds returns the lowest and highest score in the list.
// Both are zero for an empty list.
func ScoreBounds(jobs []Job) (lo, hi int) {
	for i, j := range jobs {
		if i == 0 || j.Score < lo {
			lo = j.Score
		}
		if i == 0 || j.Score > hi {
			hi = j.Score
		}
	}
	return lo, hi
}

// Titles extracts job titles in order.
func Titles(jobs []Job) []string {
	titles := make([]string, len(jobs))
	for i, j := range jobs {
		titles[i] = j.Title
	}
	return titles
}

// =============================================================================
// GRADE - A pay band
// =============================================================================

// Grade is one band of the pay structure. ID 1 is the lowest paid grade.
//
// Mid and Spread are user inputs; Min, Max, Overlap and OverlapRaw are
// derived and rebuilt by Recompute.
type Grade struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Spread int    `json:"spread"`
	Mid    int64  `json:"mid"`
	Min    int64  `json:"min"`
	Max    int64  `json:"max"`

	// Overlap with the grade directly below, in percent of that grade's
	// range. Negative values are clamped to zero.
	Overlap decimal.Decimal `json:"overlap"`

	// OverlapRaw is the signed overlap before clamping. A negative value
	// means there is a pay gap below this grade.
	OverlapRaw decimal.Decimal `json:"overlap_raw"`

	JobTitles []string `json:"job_titles"`

	// RangeLabel is the inclusive score interval, point method only.
	RangeLabel string `json:"range_label,omitempty"`
}

// GradeName is the display name for a grade ID.
func GradeName(id int) string {
	return fmt.Sprintf("Grade %d", id)
}

// FindGrade returns the index of the grade with the given ID, or -1.
func FindGrade(grades []Grade, id int) int {
	for i, g := range grades {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the grade list.
func Clone(grades []Grade) []Grade {
	if grades == nil {
		return nil
	}
	out := make([]Grade, len(grades))
	for i, g := range grades {
		out[i] = g
		out[i].JobTitles = append([]string(nil), g.JobTitles...)
	}
	return out
}

// =============================================================================
// RANGE - Derived min/max pair
// =============================================================================

type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Width returns Max - Min.
func (r Range) Width() int64 { return r.Max - r.Min }

// =============================================================================
// PREVIEW - Dry-run view of a partition
// =============================================================================

// PreviewRow describes one grade a partition would produce.
type PreviewRow struct {
	Grade        int      `json:"grade"`
	Label        string   `json:"label"`
	Count        int      `json:"count"`
	MemberTitles []string `json:"member_titles"`
}

// =============================================================================
// ANCHORS - Midpoint bounds chosen for the structure
// =============================================================================

// Anchors are the lowest and highest midpoints the company is aiming for.
// They are carried with the session for reports; generation seeds from the
// base wage instead.
type Anchors struct {
	MinMidpoint int64 `json:"min_midpoint"`
	MaxMidpoint int64 `json:"max_midpoint"`
}

/*
interval.go - Score-interval partitioning for point-evaluated jobs

PURPOSE:
  Groups point-scored jobs into grades covering fixed score intervals:
  grade k covers (k-1)*interval+1 .. k*interval.

ALGORITHM:
  1. numGrades = ceil(maxScore / interval), at least 1
  2. Bucket k holds jobs with score in (minRange, maxRange]; bucket 1 uses
     [0, maxRange] so a zero score still lands in the first grade
  3. A bucket is skipped only while its upper bound is below the lowest
     observed score AND it is empty. Interior and trailing empty buckets
     are kept so the score ladder has no holes.

DEFAULT SEEDING (multiplicative):
  mid(1) = baseWage * 1.15
  mid(k) = mid(k-1) * 1.20
  spread(k) = min(30 + 2k, 100)

  Point structures are denser near the bottom of the organization, so the
  midpoint ladder compounds instead of stepping by a fixed amount.

EXAMPLE:
  grades, err := point.Partition(jobs, 50, point.DefaultSeed(ump))

SEE ALSO:
  - factors.go: Produces the scores partitioned here
  - grading/policy.go: Build pipeline
  - ranking/policy.go: The other partition method
*/
package point

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/pay-structure/grading"
)

func init() {
	grading.RegisterMethod(grading.MethodSpec{
		Method: grading.MethodPoint,
		NewPolicy: func(param int) (grading.PartitionPolicy, error) {
			p := IntervalPolicy{Interval: param}
			if err := p.Validate(); err != nil {
				return nil, err
			}
			return p, nil
		},
		DefaultSeed:  DefaultSeed,
		SuggestParam: SuggestInterval,
	})
}

// =============================================================================
// INTERVAL POLICY
// =============================================================================

// IntervalPolicy buckets jobs by fixed score intervals.
type IntervalPolicy struct {
	Interval int
}

var _ grading.PartitionPolicy = IntervalPolicy{}

func (p IntervalPolicy) Method() grading.Method { return grading.MethodPoint }

func (p IntervalPolicy) Validate() error {
	if p.Interval <= 0 {
		return &grading.ParameterError{
			Method: grading.MethodPoint,
			Param:  p.Interval,
			Reason: "score interval must be positive",
		}
	}
	return nil
}

func (p IntervalPolicy) Buckets(jobs []grading.Job) ([]grading.Bucket, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, grading.ErrNoJobs
	}

	minScore, maxScore := grading.ScoreBounds(jobs)
	numGrades := (maxScore + p.Interval - 1) / p.Interval
	if numGrades < 1 {
		numGrades = 1
	}

	var buckets []grading.Bucket
	for k := 1; k <= numGrades; k++ {
		minRange := (k - 1) * p.Interval
		maxRange := k * p.Interval

		var members []grading.Job
		for _, j := range jobs {
			if inInterval(j.Score, k, minRange, maxRange) {
				members = append(members, j)
			}
		}

		if maxRange < minScore && len(members) == 0 {
			continue
		}

		label := fmt.Sprintf("%d - %d", minRange+1, maxRange)
		buckets = append(buckets, grading.Bucket{
			Label:      label,
			RangeLabel: label,
			Jobs:       members,
		})
	}
	return buckets, nil
}

func inInterval(score, k, minRange, maxRange int) bool {
	if k == 1 {
		return score >= 0 && score <= maxRange
	}
	return score > minRange && score <= maxRange
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Partition builds a point-method structure with the given score interval.
func Partition(jobs []grading.Job, interval int, seed grading.SeedParams) ([]grading.Grade, error) {
	return grading.Build(IntervalPolicy{Interval: interval}, jobs, seed)
}

// DefaultSeed is the point method's default midpoint/spread progression.
func DefaultSeed(baseWage decimal.Decimal) grading.SeedParams {
	return grading.SeedParams{
		BaseWage:    baseWage,
		StartFactor: decimal.RequireFromString("1.15"),
		Growth:      grading.GrowthMultiplicative,
		Step:        decimal.RequireFromString("1.20"),
		SpreadBase:  30,
		SpreadStep:  2,
		SpreadCap:   grading.MaxSpread,
	}
}

// SuggestInterval proposes a score interval from the spread of scores.
func SuggestInterval(jobs []grading.Job) int {
	lo, hi := grading.ScoreBounds(jobs)
	switch spread := hi - lo; {
	case spread > 500:
		return 100
	case spread > 200:
		return 50
	default:
		return 20
	}
}

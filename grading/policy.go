/*
policy.go - Partition policies and the structure build pipeline

PURPOSE:
  Defines how an evaluated job list becomes a draft grade list. A
  PartitionPolicy groups jobs into ordered buckets; SeedParams supplies the
  starting midpoint and spread of every bucket; Build runs the shared
  post-processing (range, then overlap) once for every policy.

KEY CONCEPTS:
  - PartitionPolicy: Groups jobs into buckets, lowest paid first
  - Bucket: The members of one future grade plus its labels
  - SeedParams: Midpoint / spread progression across grades
  - Growth: Additive (fixed currency step) or multiplicative (fixed rate)

PIPELINE:
  jobs -> policy.Buckets -> seed mid/spread per bucket -> Recompute
       (CalculateRange per grade, then ApplyOverlap across the list)

POLICIES:
  ranking.Policy:      Equal-count buckets over rank order
  point.IntervalPolicy: Fixed score-interval buckets

  Each method registers itself with RegisterMethod so callers holding only
  a Method value can build its policy and default seed.

EXAMPLE:
  policy := ranking.Policy{GradeCount: 5}
  seed := ranking.DefaultSeed(decimal.NewFromInt(5_729_876))
  grades, err := grading.Build(policy, jobs, seed)
*/
package grading

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PARTITION POLICY
// =============================================================================

// PartitionPolicy groups jobs into contiguous buckets.
type PartitionPolicy interface {
	// Method returns the evaluation method this policy partitions.
	Method() Method

	// Buckets groups jobs, lowest paid bucket first. Implementations must
	// not return empty results for a non-empty job list and must not
	// modify jobs.
	Buckets(jobs []Job) ([]Bucket, error)
}

// Bucket is one future grade.
type Bucket struct {
	// Label describes the bucket in previews ("Rank 6 - 7", "101 - 150").
	Label string

	// RangeLabel is copied onto the grade. Empty for methods without a
	// score interval.
	RangeLabel string

	Jobs []Job
}

// =============================================================================
// SEED PARAMETERS
// =============================================================================

type Growth string

const (
	// GrowthAdditive: mid(k) = mid(1) + (k-1)*Step
	GrowthAdditive Growth = "additive"

	// GrowthMultiplicative: mid(k) = mid(k-1)*Step
	GrowthMultiplicative Growth = "multiplicative"
)

// SeedParams controls the initial midpoint and spread of generated grades.
// Every field is a policy default a caller may override.
type SeedParams struct {
	// BaseWage is the statutory minimum wage the structure is anchored to.
	BaseWage decimal.Decimal `json:"base_wage"`

	// StartFactor sets mid(1) = BaseWage * StartFactor.
	StartFactor decimal.Decimal `json:"start_factor"`

	Growth Growth `json:"growth"`

	// Step is a currency amount for additive growth and a rate for
	// multiplicative growth.
	Step decimal.Decimal `json:"step"`

	// spread(k) = min(SpreadBase + SpreadStep*k, SpreadCap)
	SpreadBase int `json:"spread_base"`
	SpreadStep int `json:"spread_step"`
	SpreadCap  int `json:"spread_cap"`
}

// Midpoints returns the seeded midpoint of grades 1..n, rounded to whole
// units. Multiplicative growth compounds on the unrounded value.
func (p SeedParams) Midpoints(n int) []int64 {
	mids := make([]int64, n)
	current := p.BaseWage.Mul(p.StartFactor)
	start := current
	for k := 1; k <= n; k++ {
		switch p.Growth {
		case GrowthMultiplicative:
			if k > 1 {
				current = current.Mul(p.Step)
			}
		default:
			current = start.Add(p.Step.Mul(decimal.NewFromInt(int64(k - 1))))
		}
		mids[k-1] = current.Round(0).IntPart()
	}
	return mids
}

// Spread returns the seeded spread of grade k (1-based).
func (p SeedParams) Spread(k int) int {
	spread := p.SpreadBase + p.SpreadStep*k
	if p.SpreadCap > 0 && spread > p.SpreadCap {
		return p.SpreadCap
	}
	return spread
}

// =============================================================================
// BUILD PIPELINE
// =============================================================================

// Build partitions jobs with policy and returns the finished grade list.
func Build(policy PartitionPolicy, jobs []Job, seed SeedParams) ([]Grade, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	buckets, err := policy.Buckets(jobs)
	if err != nil {
		return nil, err
	}

	mids := seed.Midpoints(len(buckets))
	grades := make([]Grade, len(buckets))
	for i, b := range buckets {
		id := i + 1
		grades[i] = Grade{
			ID:         id,
			Name:       GradeName(id),
			Spread:     seed.Spread(id),
			Mid:        mids[i],
			JobTitles:  Titles(b.Jobs),
			RangeLabel: b.RangeLabel,
		}
	}

	return Recompute(grades), nil
}

// Preview returns what Build would group, without seeding any pay data.
func Preview(policy PartitionPolicy, jobs []Job) ([]PreviewRow, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	buckets, err := policy.Buckets(jobs)
	if err != nil {
		return nil, err
	}

	rows := make([]PreviewRow, len(buckets))
	for i, b := range buckets {
		rows[i] = PreviewRow{
			Grade:        i + 1,
			Label:        b.Label,
			Count:        len(b.Jobs),
			MemberTitles: Titles(b.Jobs),
		}
	}
	return rows, nil
}

/*
Package ranking implements job evaluation by manual rank order.

PURPOSE:
  Jobs carry a rank entered by the user (1 = most senior). The policy
  splits the rank order into a target number of equally sized grades,
  grade 1 holding the most junior jobs.

ALGORITHM:
  1. Sort ascending by rank (rank 1 first), then reverse
  2. perGrade = ceil(jobCount / gradeCount)
  3. Walk the reversed list in chunks of perGrade; every non-empty chunk
     becomes a grade. A short final chunk is kept, empty chunks are
     dropped, so fewer grades than requested may come out:
       7 jobs, 5 grades -> perGrade 2 -> chunks [2, 2, 2, 1]

DEFAULT SEEDING (additive):
  mid(k)    = baseWage * 1.1 + (k-1) * 2,000,000
  spread(k) = min(20 + 5k, 100)

EXAMPLE:
  grades, err := ranking.Partition(jobs, 5, ranking.DefaultSeed(ump))

SEE ALSO:
  - grading/policy.go: Build pipeline
  - point/interval.go: The other partition method
*/
package ranking

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/pay-structure/grading"
)

func init() {
	grading.RegisterMethod(grading.MethodSpec{
		Method: grading.MethodRanking,
		NewPolicy: func(param int) (grading.PartitionPolicy, error) {
			p := Policy{GradeCount: param}
			if err := p.Validate(); err != nil {
				return nil, err
			}
			return p, nil
		},
		DefaultSeed:  DefaultSeed,
		SuggestParam: SuggestGradeCount,
	})
}

// DefaultStep is the additive midpoint step between ranking grades.
var DefaultStep = decimal.NewFromInt(2_000_000)

// =============================================================================
// RANKING POLICY
// =============================================================================

// Policy buckets ranked jobs into GradeCount equal-size grades.
type Policy struct {
	GradeCount int
}

var _ grading.PartitionPolicy = Policy{}

func (p Policy) Method() grading.Method { return grading.MethodRanking }

func (p Policy) Validate() error {
	if p.GradeCount <= 0 {
		return &grading.ParameterError{
			Method: grading.MethodRanking,
			Param:  p.GradeCount,
			Reason: "grade count must be positive",
		}
	}
	return nil
}

func (p Policy) Buckets(jobs []grading.Job) ([]grading.Bucket, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, grading.ErrNoJobs
	}

	ordered := JuniorFirst(jobs)
	perGrade := (len(ordered) + p.GradeCount - 1) / p.GradeCount

	var buckets []grading.Bucket
	for start := 0; start < len(ordered); start += perGrade {
		end := start + perGrade
		if end > len(ordered) {
			end = len(ordered)
		}
		chunk := ordered[start:end]
		if len(chunk) == 0 {
			continue
		}
		buckets = append(buckets, grading.Bucket{
			Label: fmt.Sprintf("Rank %d - %d", chunk[len(chunk)-1].Score, chunk[0].Score),
			Jobs:  chunk,
		})
	}
	return buckets, nil
}

// JuniorFirst returns a copy of jobs ordered from the highest rank number
// (most junior) to rank 1. Jobs sharing a rank come out in reverse input order.
func JuniorFirst(jobs []grading.Job) []grading.Job {
	sorted := append([]grading.Job(nil), jobs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Partition builds a ranking-method structure with the target grade count.
func Partition(jobs []grading.Job, gradeCount int, seed grading.SeedParams) ([]grading.Grade, error) {
	return grading.Build(Policy{GradeCount: gradeCount}, jobs, seed)
}

// DefaultSeed is the ranking method's default midpoint/spread progression.
func DefaultSeed(baseWage decimal.Decimal) grading.SeedParams {
	return grading.SeedParams{
		BaseWage:    baseWage,
		StartFactor: decimal.RequireFromString("1.1"),
		Growth:      grading.GrowthAdditive,
		Step:        DefaultStep,
		SpreadBase:  20,
		SpreadStep:  5,
		SpreadCap:   grading.MaxSpread,
	}
}

// SuggestGradeCount proposes about one grade per two jobs, between 2 and 15.
func SuggestGradeCount(jobs []grading.Job) int {
	n := (len(jobs) + 1) / 2
	if n < 2 {
		return 2
	}
	if n > 15 {
		return 15
	}
	return n
}

// RankByScore returns a copy of jobs with Score replaced by a rank: the
// highest score gets rank 1. Equal scores keep their input order.
func RankByScore(jobs []grading.Job) []grading.Job {
	idx := make([]int, len(jobs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return jobs[idx[a]].Score > jobs[idx[b]].Score })

	out := append([]grading.Job(nil), jobs...)
	for rank, i := range idx {
		out[i].Score = rank + 1
	}
	return out
}

// NextRank is the default rank for a newly added job.
func NextRank(jobs []grading.Job) int {
	return len(jobs) + 1
}

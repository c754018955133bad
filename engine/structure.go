package engine

import (
	"github.com/shopspring/decimal"
	"github.com/warp/pay-structure/grading"
	"go.uber.org/zap"
)

// =============================================================================
// STATELESS ENTRY POINTS
// =============================================================================

// Preview returns how jobs would be grouped for method and param without
// seeding any pay data. It uses exactly the bucketing Generate uses.
func Preview(jobs []grading.Job, method grading.Method, param int) ([]grading.PreviewRow, error) {
	policy, _, err := policyFor(method, param)
	if err != nil {
		return nil, err
	}
	return grading.Preview(policy, jobs)
}

// Generate builds a structure for jobs with the method's default seeding.
func Generate(jobs []grading.Job, method grading.Method, param int, baseWage int64) ([]grading.Grade, error) {
	policy, spec, err := policyFor(method, param)
	if err != nil {
		return nil, err
	}
	return grading.Build(policy, jobs, spec.DefaultSeed(decimal.NewFromInt(baseWage)))
}

func policyFor(method grading.Method, param int) (grading.PartitionPolicy, grading.MethodSpec, error) {
	spec, err := grading.LookupMethod(method)
	if err != nil {
		return nil, grading.MethodSpec{}, err
	}
	policy, err := spec.NewPolicy(param)
	if err != nil {
		return nil, grading.MethodSpec{}, err
	}
	return policy, spec, nil
}

// =============================================================================
// SUGGESTION
// =============================================================================

// Suggestion is the configuration step shown before generating: the
// proposed parameter plus the score statistics it was derived from.
type Suggestion struct {
	Method   grading.Method `json:"method"`
	Param    int            `json:"param"`
	JobCount int            `json:"job_count"`
	MinScore int            `json:"min_score"`
	MaxScore int            `json:"max_score"`
}

// Suggest proposes a parameter for the session's method and jobs.
func (s *Session) Suggest() (Suggestion, error) {
	spec, err := grading.LookupMethod(s.Method)
	if err != nil {
		return Suggestion{}, err
	}
	lo, hi := grading.ScoreBounds(s.Jobs)
	return Suggestion{
		Method:   s.Method,
		Param:    spec.SuggestParam(s.Jobs),
		JobCount: len(s.Jobs),
		MinScore: lo,
		MaxScore: hi,
	}, nil
}

// =============================================================================
// STRUCTURE OPERATIONS
// =============================================================================

// Preview is the dry run of Generate for the session's jobs and method.
func (s *Session) Preview(param int) ([]grading.PreviewRow, error) {
	return Preview(s.Jobs, s.Method, param)
}

// Generate replaces the grades with a freshly built structure.
func (s *Session) Generate(param int) ([]grading.Grade, error) {
	grades, err := Generate(s.Jobs, s.Method, param, s.Config.BaseWage)
	if err != nil {
		return nil, err
	}

	s.Grades = grades
	s.Param = param
	s.touch()

	s.logger().Info("structure generated",
		zap.String("method", string(s.Method)),
		zap.Int("param", param),
		zap.Int("jobs", len(s.Jobs)),
		zap.Int("grades", len(grades)))
	if warnings := s.Diagnostics(); len(warnings) > 0 {
		s.logger().Debug("structure has warnings", zap.Int("warnings", len(warnings)))
	}
	return grading.Clone(grades), nil
}

// EditGrade applies a user edit and recomputes the whole structure.
func (s *Session) EditGrade(id int, patch grading.GradePatch) (grading.Grade, error) {
	grades, err := grading.ApplyEdit(s.Grades, id, patch)
	if err != nil {
		return grading.Grade{}, err
	}
	s.Grades = grades
	s.touch()
	return grades[grading.FindGrade(grades, id)], nil
}

// Recompute rebuilds every derived grade field from mid and spread.
func (s *Session) Recompute() []grading.Grade {
	s.Grades = grading.Recompute(s.Grades)
	return grading.Clone(s.Grades)
}

// Diagnostics lists warnings for the current structure against the
// session's base wage.
func (s *Session) Diagnostics() []grading.Warning {
	return grading.Diagnose(s.Grades, s.Config.BaseWage)
}

// Assignments maps job ID to the ID of the grade holding it. It is empty
// when there are no grades or the jobs no longer partition into them.
func (s *Session) Assignments() map[int]int {
	out := make(map[int]int, len(s.Jobs))
	buckets, ok := s.buckets()
	if !ok {
		return out
	}
	for i, b := range buckets {
		for _, j := range b.Jobs {
			out[j.ID] = s.Grades[i].ID
		}
	}
	return out
}

// refreshMembers rewrites grade member titles from the current jobs while
// keeping user-edited pay data.
func (s *Session) refreshMembers() {
	buckets, ok := s.buckets()
	if !ok {
		return
	}
	for i := range s.Grades {
		s.Grades[i].JobTitles = grading.Titles(buckets[i].Jobs)
	}
}

// buckets re-partitions the jobs with the parameter the grades were
// generated with. ok is false if the result no longer lines up with the
// grades.
func (s *Session) buckets() ([]grading.Bucket, bool) {
	if len(s.Grades) == 0 || s.Param <= 0 || len(s.Jobs) == 0 {
		return nil, false
	}
	policy, _, err := policyFor(s.Method, s.Param)
	if err != nil {
		return nil, false
	}
	buckets, err := policy.Buckets(s.Jobs)
	if err != nil || len(buckets) != len(s.Grades) {
		s.logger().Debug("jobs no longer match grades", zap.Int("buckets", len(buckets)), zap.Int("grades", len(s.Grades)))
		return nil, false
	}
	return buckets, true
}

package grading_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pay-structure/grading"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fixedPolicy returns pre-built buckets, one per entry of sizes.
type fixedPolicy struct {
	sizes []int
}

func (p fixedPolicy) Method() grading.Method { return "fixed" }

func (p fixedPolicy) Buckets(jobs []grading.Job) ([]grading.Bucket, error) {
	var out []grading.Bucket
	i := 0
	for _, n := range p.sizes {
		out = append(out, grading.Bucket{Label: "b", Jobs: jobs[i : i+n]})
		i += n
	}
	return out, nil
}

func jobsN(n int) []grading.Job {
	jobs := make([]grading.Job, n)
	for i := range jobs {
		jobs[i] = grading.Job{ID: i + 1, Title: string(rune('A' + i)), Score: i + 1}
	}
	return jobs
}

func grade(id int, min, max int64) grading.Grade {
	return grading.Grade{ID: id, Name: grading.GradeName(id), Min: min, Max: max}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertSameGrades(t *testing.T, want, got []grading.Grade) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Spread, got[i].Spread)
		assert.Equal(t, want[i].Mid, got[i].Mid)
		assert.Equal(t, want[i].Min, got[i].Min)
		assert.Equal(t, want[i].Max, got[i].Max)
		assert.True(t, want[i].Overlap.Equal(got[i].Overlap), "grade %d overlap %s != %s", want[i].ID, want[i].Overlap, got[i].Overlap)
		assert.True(t, want[i].OverlapRaw.Equal(got[i].OverlapRaw), "grade %d raw overlap", want[i].ID)
		assert.Equal(t, want[i].JobTitles, got[i].JobTitles)
		assert.Equal(t, want[i].RangeLabel, got[i].RangeLabel)
	}
}

// =============================================================================
// RANGE CALCULATOR
// =============================================================================

func TestCalculateRange_SymmetricAroundMid(t *testing.T) {
	// GIVEN: mid 10,000,000 and 50% spread
	// THEN: min 8,000,000 and max 12,000,000 ((max-min)/min = 0.5)
	r := grading.RangeFor(10_000_000, 50)
	assert.Equal(t, int64(8_000_000), r.Min)
	assert.Equal(t, int64(12_000_000), r.Max)
	assert.Equal(t, int64(4_000_000), r.Width())
}

func TestCalculateRange_ZeroSpread(t *testing.T) {
	r := grading.RangeFor(7_000_000, 0)
	assert.Equal(t, int64(7_000_000), r.Min)
	assert.Equal(t, int64(7_000_000), r.Max)
}

func TestCalculateRange_RoundsHalfAwayFromZero(t *testing.T) {
	// min = 6/2.4 = 2.5 -> 3
	r := grading.CalculateRange(decimal.NewFromInt(3), 40)
	assert.Equal(t, int64(3), r.Min)
	assert.Equal(t, int64(4), r.Max) // 3*2*1.4/2.4 = 3.5 -> 4
}

func TestCalculateRange_MidpointIdentity(t *testing.T) {
	// PROPERTY: round((min+max)/2) is within one unit of mid
	for _, mid := range []int64{1, 7, 999, 5_729_876, 6_589_357, 12_345_679, 119_999_999} {
		for spread := 0; spread <= 100; spread++ {
			r := grading.RangeFor(mid, spread)
			half := decimal.NewFromInt(r.Min + r.Max).Div(decimal.NewFromInt(2)).Round(0).IntPart()
			diff := half - mid
			if diff < 0 {
				diff = -diff
			}
			require.LessOrEqual(t, diff, int64(1), "mid=%d spread=%d -> %+v", mid, spread, r)
			require.LessOrEqual(t, r.Min, mid)
			require.GreaterOrEqual(t, r.Max, mid)
		}
	}
}

func TestCalculateRange_DegenerateSpreadDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		r := grading.RangeFor(1_000_000, -200)
		assert.Equal(t, grading.Range{}, r)
	})
}

func TestClampSpread(t *testing.T) {
	assert.Equal(t, 0, grading.ClampSpread(-5))
	assert.Equal(t, 45, grading.ClampSpread(45))
	assert.Equal(t, 100, grading.ClampSpread(180))
}

// =============================================================================
// OVERLAP CALCULATOR
// =============================================================================

func TestApplyOverlap_FirstGradeIsZero(t *testing.T) {
	out := grading.ApplyOverlap([]grading.Grade{grade(1, 100, 200)})
	assert.True(t, out[0].Overlap.IsZero())
	assert.True(t, out[0].OverlapRaw.IsZero())
}

func TestApplyOverlap_PercentOfPreviousRange(t *testing.T) {
	// GIVEN: grade 1 spans 100..200, grade 2 starts at 150
	// THEN: 50 of grade 1's 100-wide range is shared -> 50.0%
	out := grading.ApplyOverlap([]grading.Grade{grade(1, 100, 200), grade(2, 150, 300)})
	assert.True(t, out[1].Overlap.Equal(dec("50")), "got %s", out[1].Overlap)
}

func TestApplyOverlap_RoundsToOneDecimal(t *testing.T) {
	// 1/3 of the previous range -> 33.3
	out := grading.ApplyOverlap([]grading.Grade{grade(1, 0, 300), grade(2, 200, 500)})
	assert.True(t, out[1].Overlap.Equal(dec("33.3")), "got %s", out[1].Overlap)
}

func TestApplyOverlap_GapIsClampedButRawIsSigned(t *testing.T) {
	// GIVEN: grade 2 starts 50 above grade 1's max
	out := grading.ApplyOverlap([]grading.Grade{grade(1, 100, 200), grade(2, 250, 400)})

	assert.True(t, out[1].Overlap.IsZero(), "gap must display as zero overlap")
	assert.True(t, out[1].OverlapRaw.Equal(dec("-50")), "got %s", out[1].OverlapRaw)
}

func TestApplyOverlap_ZeroWidthPredecessor(t *testing.T) {
	out := grading.ApplyOverlap([]grading.Grade{grade(1, 200, 200), grade(2, 100, 300)})
	assert.True(t, out[1].Overlap.IsZero())
	assert.True(t, out[1].OverlapRaw.IsZero())
}

func TestApplyOverlap_StaysWithinBounds(t *testing.T) {
	// PROPERTY: overlap in [0, 100] for every grade, even for edited
	// structures where a grade reaches below its predecessor.
	grades := []grading.Grade{
		grade(1, 500, 1000),
		grade(2, 100, 2000),
		grade(3, 3000, 4000),
		grade(4, 3500, 3600),
	}
	out := grading.ApplyOverlap(grades)
	for _, g := range out {
		assert.False(t, g.Overlap.IsNegative(), "grade %d", g.ID)
		assert.True(t, g.Overlap.LessThanOrEqual(dec("100")), "grade %d: %s", g.ID, g.Overlap)
	}
	assert.True(t, out[1].Overlap.Equal(dec("100")))
}

func TestApplyOverlap_DoesNotMutateInput(t *testing.T) {
	in := []grading.Grade{grade(1, 100, 200), grade(2, 150, 300)}
	_ = grading.ApplyOverlap(in)
	assert.True(t, in[1].Overlap.IsZero())
}

// =============================================================================
// SEED PARAMETERS
// =============================================================================

func TestSeedParams_AdditiveMidpoints(t *testing.T) {
	seed := grading.SeedParams{
		BaseWage:    decimal.NewFromInt(5_729_876),
		StartFactor: dec("1.1"),
		Growth:      grading.GrowthAdditive,
		Step:        decimal.NewFromInt(2_000_000),
	}
	assert.Equal(t, []int64{6_302_864, 8_302_864, 10_302_864}, seed.Midpoints(3))
}

func TestSeedParams_MultiplicativeCompoundsUnrounded(t *testing.T) {
	seed := grading.SeedParams{
		BaseWage:    decimal.NewFromInt(5_729_876),
		StartFactor: dec("1.15"),
		Growth:      grading.GrowthMultiplicative,
		Step:        dec("1.20"),
	}
	// 6,589,357.4 -> 7,907,228.88 -> 9,488,674.656
	assert.Equal(t, []int64{6_589_357, 7_907_229, 9_488_675}, seed.Midpoints(3))
}

func TestSeedParams_SpreadIsCapped(t *testing.T) {
	seed := grading.SeedParams{SpreadBase: 20, SpreadStep: 5, SpreadCap: 100}
	assert.Equal(t, 25, seed.Spread(1))
	assert.Equal(t, 100, seed.Spread(16))
	assert.Equal(t, 100, seed.Spread(30))
}

// =============================================================================
// BUILD / PREVIEW
// =============================================================================

func TestBuild_EmptyJobs(t *testing.T) {
	_, err := grading.Build(fixedPolicy{}, nil, grading.SeedParams{})
	assert.ErrorIs(t, err, grading.ErrNoJobs)
	assert.True(t, grading.IsClientError(err))
}

func TestBuild_SeedsRangesAndOverlap(t *testing.T) {
	seed := grading.SeedParams{
		BaseWage:    decimal.NewFromInt(1_000_000),
		StartFactor: decimal.NewFromInt(1),
		Growth:      grading.GrowthAdditive,
		Step:        decimal.NewFromInt(500_000),
		SpreadBase:  40,
		SpreadStep:  10,
		SpreadCap:   100,
	}

	grades, err := grading.Build(fixedPolicy{sizes: []int{2, 1}}, jobsN(3), seed)
	require.NoError(t, err)
	require.Len(t, grades, 2)

	assert.Equal(t, "Grade 1", grades[0].Name)
	assert.Equal(t, []string{"A", "B"}, grades[0].JobTitles)
	assert.Equal(t, 50, grades[0].Spread)
	assert.Equal(t, int64(1_000_000), grades[0].Mid)
	assert.Equal(t, int64(800_000), grades[0].Min)
	assert.Equal(t, int64(1_200_000), grades[0].Max)

	assert.Equal(t, 60, grades[1].Spread)
	assert.Equal(t, int64(1_500_000), grades[1].Mid)
	assert.True(t, grades[0].Overlap.IsZero())
	// grade 2 min = 3,000,000/2.6 = 1,153,846 -> (1,200,000-1,153,846)/400,000
	assert.True(t, grades[1].Overlap.Equal(dec("11.5")), "got %s", grades[1].Overlap)
}

func TestBuild_IsFixedPointOfRecompute(t *testing.T) {
	seed := grading.SeedParams{
		BaseWage:    decimal.NewFromInt(5_729_876),
		StartFactor: dec("1.15"),
		Growth:      grading.GrowthMultiplicative,
		Step:        dec("1.2"),
		SpreadBase:  30,
		SpreadStep:  2,
		SpreadCap:   100,
	}
	grades, err := grading.Build(fixedPolicy{sizes: []int{1, 1, 1, 1}}, jobsN(4), seed)
	require.NoError(t, err)

	assertSameGrades(t, grades, grading.Recompute(grades))
}

func TestPreview_ListsBuckets(t *testing.T) {
	rows, err := grading.Preview(fixedPolicy{sizes: []int{1, 2}}, jobsN(3))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, grading.PreviewRow{Grade: 2, Label: "b", Count: 2, MemberTitles: []string{"B", "C"}}, rows[1])
}

// =============================================================================
// RECOMPUTE / EDITS
// =============================================================================

func seeded() []grading.Grade {
	return grading.Recompute([]grading.Grade{
		{ID: 1, Name: "Grade 1", Spread: 25, Mid: 6_000_000, JobTitles: []string{"Admin"}},
		{ID: 2, Name: "Grade 2", Spread: 30, Mid: 8_000_000, JobTitles: []string{"Developer"}},
		{ID: 3, Name: "Grade 3", Spread: 35, Mid: 10_000_000, JobTitles: []string{"Lead"}},
	})
}

func TestRecompute_Idempotent(t *testing.T) {
	once := grading.Recompute(seeded())
	twice := grading.Recompute(once)
	assertSameGrades(t, once, twice)
}

func TestApplyEdit_MidRecomputesWholeList(t *testing.T) {
	// GIVEN: a three-grade structure
	before := seeded()

	// WHEN: grade 2's midpoint is raised
	mid := int64(9_000_000)
	after, err := grading.ApplyEdit(before, 2, grading.GradePatch{Mid: &mid})
	require.NoError(t, err)

	// THEN: grade 2's range moves and grade 3's overlap follows it
	assert.Equal(t, grading.RangeFor(9_000_000, 30).Min, after[1].Min)
	assert.False(t, after[2].Overlap.Equal(before[2].Overlap), "overlap of the grade above must be refreshed")
	assertSameGrades(t, grading.Recompute(after), after)

	// AND: input untouched
	assert.Equal(t, int64(8_000_000), before[1].Mid)
}

func TestApplyEdit_SpreadIsClamped(t *testing.T) {
	spread := 150
	after, err := grading.ApplyEdit(seeded(), 1, grading.GradePatch{Spread: &spread})
	require.NoError(t, err)
	assert.Equal(t, 100, after[0].Spread)
	assert.Equal(t, grading.RangeFor(6_000_000, 100).Max, after[0].Max)
}

func TestApplyEdit_NameDoesNotRecompute(t *testing.T) {
	grades := seeded()
	grades[0].Min = 1 // stale on purpose
	name := "Entry"
	after, err := grading.ApplyEdit(grades, 1, grading.GradePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Entry", after[0].Name)
	assert.Equal(t, int64(1), after[0].Min)
}

func TestApplyEdit_Errors(t *testing.T) {
	_, err := grading.ApplyEdit(seeded(), 9, grading.GradePatch{})
	assert.ErrorIs(t, err, grading.ErrGradeNotFound)
	assert.True(t, grading.IsNotFound(err))

	zero := int64(0)
	_, err = grading.ApplyEdit(seeded(), 1, grading.GradePatch{Mid: &zero})
	assert.ErrorIs(t, err, grading.ErrInvalidEdit)
}

// =============================================================================
// JOB HELPERS
// =============================================================================

func TestNextJobID(t *testing.T) {
	assert.Equal(t, 1, grading.NextJobID(nil))
	assert.Equal(t, 8, grading.NextJobID([]grading.Job{{ID: 3}, {ID: 7}, {ID: 2}}))
}

func TestScoreBounds(t *testing.T) {
	lo, hi := grading.ScoreBounds([]grading.Job{{Score: 40}, {Score: 10}, {Score: 90}})
	assert.Equal(t, 10, lo)
	assert.Equal(t, 90, hi)
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

func TestDiagnose(t *testing.T) {
	grades := grading.ApplyOverlap([]grading.Grade{
		{ID: 1, Name: "Grade 1", Min: 5_000_000, Max: 7_000_000, JobTitles: []string{"Driver"}},
		{ID: 2, Name: "Grade 2", Min: 5_500_000, Max: 9_000_000},
		{ID: 3, Name: "Grade 3", Min: 9_500_000, Max: 12_000_000, JobTitles: []string{"Manager"}},
	})

	warnings := grading.Diagnose(grades, 5_729_876)

	codes := map[int][]grading.WarningCode{}
	for _, w := range warnings {
		codes[w.GradeID] = append(codes[w.GradeID], w.Code)
	}
	assert.Equal(t, []grading.WarningCode{grading.WarnMinBelowBaseWage}, codes[1])
	assert.Equal(t, []grading.WarningCode{grading.WarnMinBelowBaseWage, grading.WarnHighOverlap, grading.WarnEmptyGrade}, codes[2])
	assert.Equal(t, []grading.WarningCode{grading.WarnPayGap}, codes[3])
}

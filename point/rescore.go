package point

import "github.com/warp/pay-structure/grading"

// Rescore returns a copy of jobs with every score recomputed against m.
// Jobs without selections get level 1 for every factor first.
func Rescore(jobs []grading.Job, m FactorMap) []grading.Job {
	out := make([]grading.Job, len(jobs))
	for i, j := range jobs {
		if len(j.Factors) == 0 {
			j.Factors = m.DefaultSelections()
		} else {
			j.Factors = copySelections(j.Factors)
		}
		j.Score = Score(j.Factors, m)
		out[i] = j
	}
	return out
}

func copySelections(sel map[string]int) map[string]int {
	out := make(map[string]int, len(sel))
	for k, v := range sel {
		out[k] = v
	}
	return out
}

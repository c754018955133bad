package engine

import (
	"fmt"

	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
	"github.com/warp/pay-structure/ranking"
	"go.uber.org/zap"
)

// =============================================================================
// JOB INPUTS
// =============================================================================

// JobInput describes a job to add. Zero values get method defaults: the
// next free rank under ranking, level 1 for every factor under point.
type JobInput struct {
	Title   string
	Note    string
	Rank    int
	Factors map[string]int
}

// JobPatch is a partial job update. Nil fields are left unchanged.
// Rank only applies under the ranking method; under the point method the
// score always follows the factor selections.
type JobPatch struct {
	Title   *string
	Note    *string
	Rank    *int
	Factors map[string]int
}

func (p JobPatch) structural() bool {
	return p.Rank != nil || p.Factors != nil
}

// =============================================================================
// JOB OPERATIONS
// =============================================================================

// AddJob appends a job and regenerates an existing structure.
func (s *Session) AddJob(in JobInput) grading.Job {
	job := grading.Job{
		ID:    grading.NextJobID(s.Jobs),
		Title: in.Title,
		Note:  in.Note,
	}
	if job.Title == "" {
		job.Title = DefaultJobTitle
	}

	if len(in.Factors) > 0 {
		job.Factors = copySelections(in.Factors)
	} else {
		job.Factors = s.Factors.DefaultSelections()
	}

	switch s.Method {
	case grading.MethodRanking:
		job.Score = in.Rank
		if job.Score <= 0 {
			job.Score = ranking.NextRank(s.Jobs)
		}
	default:
		job.Score = s.score(job)
	}

	s.Jobs = append(s.Jobs, job)
	s.regenerate("job added")
	s.touch()
	return job
}

// UpdateJob applies patch to a job. Title and note changes keep the grades;
// rank and factor changes regenerate them.
func (s *Session) UpdateJob(id int, patch JobPatch) (grading.Job, error) {
	idx := grading.FindJob(s.Jobs, id)
	if idx < 0 {
		return grading.Job{}, fmt.Errorf("%w: %d", grading.ErrJobNotFound, id)
	}
	if patch.Rank != nil && *patch.Rank <= 0 {
		return grading.Job{}, fmt.Errorf("%w: rank must be positive, got %d", grading.ErrInvalidEdit, *patch.Rank)
	}

	job := s.Jobs[idx]
	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Note != nil {
		job.Note = *patch.Note
	}
	if patch.Factors != nil {
		job.Factors = copySelections(patch.Factors)
	}
	switch s.Method {
	case grading.MethodRanking:
		if patch.Rank != nil {
			job.Score = *patch.Rank
		}
	default:
		job.Score = s.score(job)
	}

	s.Jobs[idx] = job
	if patch.structural() {
		s.regenerate("job re-evaluated")
	} else if patch.Title != nil {
		s.refreshMembers()
	}
	s.touch()
	return job, nil
}

// RemoveJob deletes a job and regenerates an existing structure.
func (s *Session) RemoveJob(id int) error {
	idx := grading.FindJob(s.Jobs, id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", grading.ErrJobNotFound, id)
	}
	s.Jobs = append(s.Jobs[:idx:idx], s.Jobs[idx+1:]...)
	s.regenerate("job removed")
	s.touch()
	return nil
}

// score evaluates a point job, logging selections that do not count.
func (s *Session) score(job grading.Job) int {
	if unmatched := point.Unmatched(job.Factors, s.Factors); len(unmatched) > 0 {
		s.logger().Debug("selections ignored",
			zap.Int("job_id", job.ID),
			zap.Strings("factors", unmatched))
	}
	return point.Score(job.Factors, s.Factors)
}

func copySelections(sel map[string]int) map[string]int {
	out := make(map[string]int, len(sel))
	for k, v := range sel {
		out[k] = v
	}
	return out
}

/*
Package engine is the session controller of the compensation structure engine.

PURPOSE:
  A Session holds everything one user works on: company settings, the
  evaluation method, the factor map, the job list and the generated grades.
  Every mutation goes through a Session method so the derived data stays
  consistent:

  - Job or factor changes rescore jobs and rebuild the grades from scratch
    with the parameter they were generated with
  - Method and template changes discard the grades
  - Grade edits recompute ranges and overlap for the whole list

LIFECYCLE:
  s := engine.NewSession(id, engine.DefaultConfig(), log)
  s.LoadTemplate(tpl)            // or AddJob repeatedly
  rows, _ := s.Preview(50)       // dry run
  grades, _ := s.Generate(50)    // build the structure
  s.EditGrade(3, patch)          // fine-tune

PERSISTENCE:
  Session is plain data with JSON tags. Stores serialize it whole; the
  logger is re-attached with Attach after loading.

SEE ALSO:
  - grading/policy.go: Build pipeline
  - store/: Session stores
*/
package engine

import (
	"fmt"
	"time"

	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
	"github.com/warp/pay-structure/ranking"
	"go.uber.org/zap"
)

// DefaultBaseWage is the regional minimum wage used when none is configured.
const DefaultBaseWage int64 = 5_729_876

// DefaultJobTitle names jobs added without a title.
const DefaultJobTitle = "New Position"

// =============================================================================
// CONFIGURATION
// =============================================================================

// Signatory is a person signing off the structure.
type Signatory struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Config is the company-level setup of a session.
type Config struct {
	CompanyName string          `json:"company_name"`
	BaseWage    int64           `json:"base_wage"`
	Anchors     grading.Anchors `json:"anchors"`
	Creator     Signatory       `json:"creator"`
	Approver    Signatory       `json:"approver"`
}

// DefaultConfig returns the settings a fresh session starts with.
func DefaultConfig() Config {
	return Config{
		BaseWage: DefaultBaseWage,
		Anchors:  grading.Anchors{MinMidpoint: 6_500_000, MaxMidpoint: 20_000_000},
		Creator:  Signatory{Name: "(Full name)", Title: "HR Manager"},
		Approver: Signatory{Name: "(Full name)", Title: "President Director"},
	}
}

// Validate rejects settings the engine cannot seed from.
func (c Config) Validate() error {
	if c.BaseWage <= 0 {
		return fmt.Errorf("%w: base wage must be positive, got %d", ErrInvalidConfig, c.BaseWage)
	}
	if c.Anchors.MinMidpoint < 0 || c.Anchors.MaxMidpoint < 0 {
		return fmt.Errorf("%w: anchors must not be negative", ErrInvalidConfig)
	}
	return nil
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one compensation structure being worked on.
type Session struct {
	ID       string          `json:"id"`
	Config   Config          `json:"config"`
	Method   grading.Method  `json:"method"`
	Factors  point.FactorMap `json:"factors"`
	Jobs     []grading.Job   `json:"jobs"`
	Grades   []grading.Grade `json:"grades"`
	Param    int             `json:"param,omitempty"`
	Template string          `json:"template,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	log *zap.Logger
}

// NewSession creates an empty point-method session with the default factors.
func NewSession(id string, cfg Config, log *zap.Logger) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        id,
		Config:    cfg,
		Method:    grading.MethodPoint,
		Factors:   point.DefaultFactors(),
		Jobs:      []grading.Job{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.Attach(log)
}

// Attach sets the session logger. A nil logger disables logging.
func (s *Session) Attach(log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log.With(zap.String("session_id", s.ID))
	return s
}

func (s *Session) logger() *zap.Logger {
	if s.log == nil {
		s.Attach(nil)
	}
	return s.log
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// regenerate rebuilds the structure after the jobs or factors changed,
// reusing the parameter it was generated with. Grades are discarded when
// there is no parameter, no job left or the rebuild fails.
func (s *Session) regenerate(reason string) {
	if s.Param <= 0 || len(s.Jobs) == 0 {
		s.clearGrades(reason)
		return
	}
	if _, err := s.Generate(s.Param); err != nil {
		s.logger().Warn("structure rebuild failed",
			zap.String("reason", reason),
			zap.Int("param", s.Param),
			zap.Error(err))
		s.clearGrades(reason)
	}
}

// clearGrades discards the structure after a structural change.
func (s *Session) clearGrades(reason string) {
	if len(s.Grades) > 0 {
		s.logger().Debug("grades discarded", zap.String("reason", reason), zap.Int("grades", len(s.Grades)))
	}
	s.Grades = nil
	s.Param = 0
}

// Clone returns a deep copy sharing the logger.
func (s *Session) Clone() *Session {
	out := *s
	out.Factors = s.Factors.Clone()
	out.Jobs = cloneJobs(s.Jobs)
	out.Grades = grading.Clone(s.Grades)
	return &out
}

func cloneJobs(jobs []grading.Job) []grading.Job {
	out := make([]grading.Job, len(jobs))
	for i, j := range jobs {
		if j.Factors != nil {
			sel := make(map[string]int, len(j.Factors))
			for k, v := range j.Factors {
				sel[k] = v
			}
			j.Factors = sel
		}
		out[i] = j
	}
	return out
}

// =============================================================================
// SESSION SETUP
// =============================================================================

// SetConfig replaces the company settings. Grades are kept: the base wage
// only seeds new structures and drives diagnostics.
func (s *Session) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.Config = cfg
	s.touch()
	return nil
}

// LoadTemplate replaces jobs, method and anchors with a preset organisation.
func (s *Session) LoadTemplate(t factory.Template) {
	s.Config.Anchors = t.Anchors
	s.Method = t.Method
	s.Jobs = t.JobsFor(s.Factors)
	s.Template = t.ID
	s.clearGrades("template loaded")
	s.touch()

	s.logger().Info("template loaded",
		zap.String("template", t.ID),
		zap.String("method", string(t.Method)),
		zap.Int("jobs", len(s.Jobs)))
}

// Reset clears jobs and grades and resets the anchors.
func (s *Session) Reset() {
	s.Jobs = []grading.Job{}
	s.Template = ""
	s.Config.Anchors = grading.Anchors{MinMidpoint: 6_500_000, MaxMidpoint: 0}
	s.clearGrades("reset")
	s.touch()
}

// SetMethod switches the evaluation method. Switching to the point method
// rescores every job from its factor selections; switching to ranking turns
// the current scores into ranks, highest score first.
func (s *Session) SetMethod(m grading.Method) error {
	if _, err := grading.LookupMethod(m); err != nil {
		return err
	}
	if m == s.Method {
		return nil
	}
	s.Method = m
	switch m {
	case grading.MethodPoint:
		s.Jobs = point.Rescore(s.Jobs, s.Factors)
	case grading.MethodRanking:
		s.Jobs = ranking.RankByScore(s.Jobs)
	}
	s.clearGrades("method changed")
	s.touch()
	return nil
}

// =============================================================================
// FACTOR MAP
// =============================================================================

// EditFactors applies edit to a copy of the factor map and installs the
// result with UpdateFactors. On any error the session is unchanged.
func (s *Session) EditFactors(edit func(m *point.FactorMap) error) error {
	next := s.Factors.Clone()
	if err := edit(&next); err != nil {
		return err
	}
	return s.UpdateFactors(next)
}

// UpdateFactors installs a new factor map, rescores every job against it
// and regenerates an existing structure. The map is validated first; on
// error nothing changes. The stored version is always one above the
// previous one.
func (s *Session) UpdateFactors(m point.FactorMap) error {
	if err := m.Validate(); err != nil {
		return err
	}

	next := m.Clone()
	next.Version = s.Factors.Version + 1
	rescored := point.Rescore(s.Jobs, next)

	for _, j := range rescored {
		if unmatched := point.Unmatched(j.Factors, next); len(unmatched) > 0 {
			s.logger().Warn("selections ignored after factor update",
				zap.Int("job_id", j.ID),
				zap.Strings("factors", unmatched))
		}
	}

	s.Factors = next
	if s.Method == grading.MethodPoint {
		s.Jobs = rescored
	} else {
		// Keep ranks; only refresh selections so a later switch to point
		// scores against the new map.
		for i := range s.Jobs {
			s.Jobs[i].Factors = rescored[i].Factors
		}
	}
	s.regenerate("factors updated")
	s.touch()

	s.logger().Info("factors updated",
		zap.Int("version", next.Version),
		zap.Int("jobs_rescored", len(rescored)))
	return nil
}

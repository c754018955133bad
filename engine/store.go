/*
store.go - Persistence interface for sessions

PURPOSE:
  Defines the boundary between the session controller and the database.
  Sessions are stored whole as JSON documents; the engine never persists
  a partially updated session.

ATOMIC UPDATES:
  Update loads a session, hands a copy to fn and writes the copy back only
  if fn succeeds. A failed edit (invalid factor map, unknown grade) leaves
  the stored session exactly as it was. Implementations serialize Update
  calls for the same session.

FACTOR HISTORY:
  Every factor map version a session goes through is kept, so a score can
  be traced to the configuration that produced it.

IMPLEMENTATIONS:
  - store/memory.go: In-memory for tests and the CLI
  - store/sqlite/sqlite.go: SQLite documents
*/
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

// ErrDuplicateSession is returned by Create for an ID already in use.
var ErrDuplicateSession = errors.New("session already exists")

// Store persists sessions.
type Store interface {
	// Create saves a new session. An empty ID is replaced by a fresh one.
	Create(ctx context.Context, s *Session) error

	// Get loads a session. Returns ErrSessionNotFound if missing.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns summaries of all sessions, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Update applies fn atomically and returns the stored result.
	Update(ctx context.Context, id string, fn func(s *Session) error) (*Session, error)

	// Delete removes a session. Returns ErrSessionNotFound if missing.
	Delete(ctx context.Context, id string) error

	// FactorHistory returns every factor map version of a session, oldest first.
	FactorHistory(ctx context.Context, id string) ([]point.FactorMap, error)
}

// Summary is the list view of a session.
type Summary struct {
	ID          string         `json:"id"`
	CompanyName string         `json:"company_name"`
	Method      grading.Method `json:"method"`
	Template    string         `json:"template,omitempty"`
	JobCount    int            `json:"job_count"`
	GradeCount  int            `json:"grade_count"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Summarize builds the list view of s.
func Summarize(s *Session) Summary {
	return Summary{
		ID:          s.ID,
		CompanyName: s.Config.CompanyName,
		Method:      s.Method,
		Template:    s.Template,
		JobCount:    len(s.Jobs),
		GradeCount:  len(s.Grades),
		UpdatedAt:   s.UpdatedAt,
	}
}

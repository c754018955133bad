/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists sessions as JSON documents with a few summary columns for
  listing. The engine owns the document shape; this package never looks
  inside beyond the summary fields.

KEY TABLES:
  sessions:        One row per session, the full session as JSON
  factor_versions: Every factor map a session has used (append-only)

ATOMIC UPDATES:
  Update reads the document, applies the caller's function and writes the
  result inside one SQL transaction. A function error rolls everything
  back, so a rejected edit never reaches the database.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/paystructure.db", log)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - engine/store.go: Interface definition
  - store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
	"go.uber.org/zap"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log *zap.Logger
}

var _ engine.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL,
		template TEXT NOT NULL DEFAULT '',
		job_count INTEGER NOT NULL DEFAULT 0,
		grade_count INTEGER NOT NULL DEFAULT 0,
		document TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at
		ON sessions(updated_at DESC);

	-- Factor map versions (append-only)
	CREATE TABLE IF NOT EXISTS factor_versions (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		version INTEGER NOT NULL,
		document TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (session_id, version)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SESSION STORE (engine.Store interface)
// =============================================================================

// Create inserts a new session, assigning a UUID if s has no ID.
func (s *Store) Create(ctx context.Context, sess *engine.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.Attach(s.log)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	sum := engine.Summarize(sess)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, company_name, method, template, job_count, grade_count, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sum.ID, sum.CompanyName, string(sum.Method), sum.Template, sum.JobCount, sum.GradeCount,
		string(doc), formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", engine.ErrDuplicateSession, sess.ID)
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertFactorVersion(ctx, tx, sess.ID, sess.Factors); err != nil {
		return err
	}
	return tx.Commit()
}

// Get loads a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*engine.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM sessions WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s.decode(doc)
}

// List returns session summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]engine.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_name, method, template, job_count, grade_count, updated_at
		FROM sessions ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []engine.Summary{}
	for rows.Next() {
		var sum engine.Summary
		var method, updatedAt string
		if err := rows.Scan(&sum.ID, &sum.CompanyName, &method, &sum.Template, &sum.JobCount, &sum.GradeCount, &updatedAt); err != nil {
			return nil, err
		}
		sum.Method = grading.Method(method)
		t, err := time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at of session %s: %w", sum.ID, err)
		}
		sum.UpdatedAt = t
		result = append(result, sum)
	}
	return result, rows.Err()
}

// Update applies fn inside a SQL transaction.
func (s *Store) Update(ctx context.Context, id string, fn func(sess *engine.Session) error) (*engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, "SELECT document FROM sessions WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess, err := s.decode(doc)
	if err != nil {
		return nil, err
	}
	previousVersion := sess.Factors.Version

	if err := fn(sess); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	sum := engine.Summarize(sess)
	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET company_name = ?, method = ?, template = ?, job_count = ?, grade_count = ?, document = ?, updated_at = ?
		WHERE id = ?
	`,
		sum.CompanyName, string(sum.Method), sum.Template, sum.JobCount, sum.GradeCount,
		string(encoded), formatTime(sess.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if sess.Factors.Version != previousVersion {
		if err := insertFactorVersion(ctx, tx, id, sess.Factors); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}
	return sess, nil
}

// Delete removes a session and its factor history.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	return nil
}

// FactorHistory returns every stored factor map version, oldest first.
func (s *Store) FactorHistory(ctx context.Context, id string) ([]point.FactorMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT document FROM factor_versions WHERE session_id = ? ORDER BY version",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []point.FactorMap
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var m point.FactorMap
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("failed to decode factor version: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	return result, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"factor_versions", "sessions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) decode(doc string) (*engine.Session, error) {
	var sess engine.Session
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess.Attach(s.log), nil
}

func insertFactorVersion(ctx context.Context, db execer, sessionID string, m point.FactorMap) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode factor map: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO factor_versions (session_id, version, document, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, version) DO UPDATE SET document = excluded.document
	`, sessionID, m.Version, string(doc), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save factor version: %w", err)
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}

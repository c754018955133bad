// Package store provides engine.Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/point"
	"go.uber.org/zap"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
	history  map[string][]point.FactorMap
	log      *zap.Logger
}

var _ engine.Store = (*Memory)(nil)

func NewMemory(log *zap.Logger) *Memory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Memory{
		sessions: make(map[string]*engine.Session),
		history:  make(map[string][]point.FactorMap),
		log:      log,
	}
}

// Create stores a copy of s, assigning a UUID if s has no ID.
func (m *Memory) Create(_ context.Context, s *engine.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("%w: %s", engine.ErrDuplicateSession, s.ID)
	}
	s.Attach(m.log)
	m.sessions[s.ID] = s.Clone()
	m.history[s.ID] = []point.FactorMap{s.Factors.Clone()}
	return nil
}

// Get returns a copy of the stored session.
func (m *Memory) Get(_ context.Context, id string) (*engine.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

func (m *Memory) List(_ context.Context) ([]engine.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, engine.Summarize(s))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// Update runs fn on a copy and swaps it in only if fn succeeds.
func (m *Memory) Update(_ context.Context, id string, fn func(s *engine.Session) error) (*engine.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	if working.Factors.Version != current.Factors.Version {
		m.history[id] = append(m.history[id], working.Factors.Clone())
	}
	m.sessions[id] = working
	return working.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	delete(m.history, id)
	return nil
}

func (m *Memory) FactorHistory(_ context.Context, id string) ([]point.FactorMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions, ok := m.history[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	result := make([]point.FactorMap, len(versions))
	for i, v := range versions {
		result[i] = v.Clone()
	}
	return result, nil
}

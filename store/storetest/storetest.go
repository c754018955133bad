// Package storetest holds the behaviour every engine.Store must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
	"go.uber.org/zap"
)

// Run exercises store against the engine.Store contract. newStore must
// return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) engine.Store) {
	t.Run("CreateAssignsID", func(t *testing.T) { testCreateAssignsID(t, newStore(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("UpdatePersists", func(t *testing.T) { testUpdatePersists(t, newStore(t)) })
	t.Run("UpdateIsAtomic", func(t *testing.T) { testUpdateIsAtomic(t, newStore(t)) })
	t.Run("FactorHistory", func(t *testing.T) { testFactorHistory(t, newStore(t)) })
	t.Run("ListAndDelete", func(t *testing.T) { testListAndDelete(t, newStore(t)) })
}

func newSession(id string) *engine.Session {
	return engine.NewSession(id, engine.DefaultConfig(), zap.NewNop())
}

func testCreateAssignsID(t *testing.T, store engine.Store) {
	ctx := context.Background()
	s := newSession("")

	require.NoError(t, store.Create(ctx, s))
	assert.Len(t, s.ID, 36, "uuid assigned")

	loaded, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, grading.MethodPoint, loaded.Method)
	assert.Equal(t, point.DefaultFactors(), loaded.Factors)
}

func testCreateDuplicate(t *testing.T, store engine.Store) {
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newSession("fixed")))

	err := store.Create(ctx, newSession("fixed"))
	assert.ErrorIs(t, err, engine.ErrDuplicateSession)
}

func testGetMissing(t *testing.T, store engine.Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)

	_, err = store.Update(ctx, "nope", func(*engine.Session) error { return nil })
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "nope"), engine.ErrSessionNotFound)
}

func testUpdatePersists(t *testing.T, store engine.Store) {
	// GIVEN: a stored session
	ctx := context.Background()
	s := newSession("")
	require.NoError(t, store.Create(ctx, s))
	tpl, err := factory.LookupTemplate("startup")
	require.NoError(t, err)

	// WHEN: a template is loaded and a structure generated in one update
	updated, err := store.Update(ctx, s.ID, func(sess *engine.Session) error {
		sess.LoadTemplate(tpl)
		_, err := sess.Generate(5)
		return err
	})
	require.NoError(t, err)
	require.Len(t, updated.Grades, 4)

	// THEN: a fresh load sees the structure
	loaded, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, grading.MethodRanking, loaded.Method)
	assert.Len(t, loaded.Jobs, 7)
	require.Len(t, loaded.Grades, 4)
	assert.Equal(t, updated.Grades[3].Max, loaded.Grades[3].Max)
	assert.True(t, updated.Grades[3].Overlap.Equal(loaded.Grades[3].Overlap))
}

func testUpdateIsAtomic(t *testing.T, store engine.Store) {
	ctx := context.Background()
	s := newSession("")
	require.NoError(t, store.Create(ctx, s))

	boom := errors.New("boom")
	_, err := store.Update(ctx, s.ID, func(sess *engine.Session) error {
		sess.AddJob(engine.JobInput{Title: "Ghost"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Jobs, "failed update must not be persisted")
}

func testFactorHistory(t *testing.T, store engine.Store) {
	ctx := context.Background()
	s := newSession("")
	require.NoError(t, store.Create(ctx, s))

	for _, score := range []int{70, 90} {
		_, err := store.Update(ctx, s.ID, func(sess *engine.Session) error {
			m := sess.Factors.Clone()
			if err := m.SetOption(point.FactorEducation, 1, "High school", score); err != nil {
				return err
			}
			return sess.UpdateFactors(m)
		})
		require.NoError(t, err)
	}

	history, err := store.FactorHistory(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{history[0].Version, history[1].Version, history[2].Version})

	opt, _ := history[2].Factors[point.FactorEducation].Option(1)
	assert.Equal(t, 90, opt.Score)
}

func testListAndDelete(t *testing.T, store engine.Store) {
	ctx := context.Background()
	a := newSession("a")
	b := newSession("b")
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	_, err := store.Update(ctx, "a", func(sess *engine.Session) error {
		cfg := sess.Config
		cfg.CompanyName = "Acme"
		return sess.SetConfig(cfg)
	})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID, "most recently updated first")
	assert.Equal(t, "Acme", list[0].CompanyName)

	require.NoError(t, store.Delete(ctx, "a"))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.FactorHistory(ctx, "a")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

// Package storetest holds the behaviour every [store.Store] must share.
package storetest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvitoroc/gorules/store"
)

// Run exercises the store returned by newStore. newStore is called once per
// subtest and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("upsert keeps one record per name", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Store(ctx, "rule1", "age > 30"))
		rules, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 1)
		id := rules[0].ID

		require.NoError(t, s.Store(ctx, "rule1", "age > 40"))
		rules, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 1)

		assert.Equal(t, id, rules[0].ID, "id should survive an upsert")
		assert.Equal(t, "age > 40", rules[0].Text)

		text, ok, err := s.Fetch(ctx, "rule1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "age > 40", text)
	})

	t.Run("fetch of an unknown rule", func(t *testing.T) {
		s := newStore(t)

		text, ok, err := s.Fetch(ctx, "missing_rule")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, text)
	})

	t.Run("list orders by name", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Store(ctx, "b", "age > 2"))
		require.NoError(t, s.Store(ctx, "c", "age > 3"))
		require.NoError(t, s.Store(ctx, "a", "age > 1"))

		rules, err := s.List(ctx)
		require.NoError(t, err)

		diff := cmp.Diff([]store.Rule{
			{Name: "a", Text: "age > 1"},
			{Name: "b", Text: "age > 2"},
			{Name: "c", Text: "age > 3"},
		}, rules, cmpopts.IgnoreFields(store.Rule{}, "ID"))
		assert.Empty(t, diff)

		for _, r := range rules {
			assert.NotZero(t, r.ID, "didn't generate id for rule '%s'", r.Name)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Store(ctx, "rule1", "age > 30"))
		require.NoError(t, s.Remove(ctx, "rule1"))
		require.NoError(t, s.Remove(ctx, "rule1"), "removing twice is not an error")
		require.NoError(t, s.Remove(ctx, "never_stored"))

		_, ok, err := s.Fetch(ctx, "rule1")
		require.NoError(t, err)
		assert.False(t, ok)

		rules, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("empty name", func(t *testing.T) {
		s := newStore(t)

		require.ErrorIs(t, s.Store(ctx, "", "age > 30"), store.ErrInvalidName)
	})

	t.Run("metadata", func(t *testing.T) {
		s := newStore(t)

		_, ok, err := s.Metadata(ctx, "last_updated")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SetMetadata(ctx, "last_updated", "2023-10-21"))
		require.NoError(t, s.SetMetadata(ctx, "last_updated", "2023-10-22"))

		v, ok, err := s.Metadata(ctx, "last_updated")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2023-10-22", v)
	})
}

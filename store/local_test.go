package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) *LocalStore {
		t.Helper()
		s, err := NewLocalStore(filepath.Join(t.TempDir(), "checkpoints"))
		require.NoError(t, err)
		return s
	}

	t.Run("PutGet", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "exp/searcher.ckpt", []byte("v1")))

		got, err := s.Get(ctx, "exp/searcher.ckpt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "k", []byte("v1")))
		require.NoError(t, s.Put(ctx, "k", []byte("v2")))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "k", []byte("v")))
		require.NoError(t, s.Delete(ctx, "k"))
		require.NoError(t, s.Delete(ctx, "k"))
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		s := newStore(t)
		for _, name := range []string{"exp1/b", "exp1/a", "exp2/a"} {
			require.NoError(t, s.Put(ctx, name, []byte("v")))
		}

		names, err := s.List(ctx, "exp1/")
		require.NoError(t, err)
		assert.Equal(t, []string{"exp1/a", "exp1/b"}, names)
	})

	t.Run("NoTempResidue", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "k", []byte("v")))

		entries, err := os.ReadDir(s.root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "k", entries[0].Name())
	})
}

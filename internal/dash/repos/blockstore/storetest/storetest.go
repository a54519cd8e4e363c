// Package storetest holds the behavioural checks every blockstore.Store
// backend must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore"
)

// Factory opens a fresh, empty store at path.
type Factory func(path string) (blockstore.Store, error)

// Run exercises a backend. newPath must return a fresh file path per call.
func Run(t *testing.T, open Factory, newPath func() string) {
	t.Helper()
	ctx := context.Background()

	mustOpen := func(t *testing.T, path string) blockstore.Store {
		t.Helper()
		st, err := open(path)
		require.NoError(t, err)
		return st
	}

	t.Run("insert then get", func(t *testing.T) {
		st := mustOpen(t, newPath())
		defer func() { _ = st.Close() }()

		b := domain.TimedBlock{ID: "a", Domain: "example.com", CreatedAt: 1000, ExpiresAt: 1060, Active: true}
		require.NoError(t, st.Insert(ctx, b))

		got, err := st.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, b, got)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		st := mustOpen(t, newPath())
		defer func() { _ = st.Close() }()

		b := domain.TimedBlock{ID: "a", Domain: "example.com", CreatedAt: 1000, ExpiresAt: 1060, Active: true}
		require.NoError(t, st.Insert(ctx, b))
		err := st.Insert(ctx, b)
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	})

	t.Run("get unknown", func(t *testing.T) {
		st := mustOpen(t, newPath())
		defer func() { _ = st.Close() }()

		_, err := st.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list active and deactivate", func(t *testing.T) {
		st := mustOpen(t, newPath())
		defer func() { _ = st.Close() }()

		require.NoError(t, st.Insert(ctx, domain.TimedBlock{ID: "a", Domain: "a.com", CreatedAt: 1, ExpiresAt: 61, Active: true}))
		require.NoError(t, st.Insert(ctx, domain.TimedBlock{ID: "b", Domain: "b.com", CreatedAt: 1, ExpiresAt: 61, Active: true}))

		active, err := st.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 2)

		require.NoError(t, st.Deactivate(ctx, "a"))
		require.NoError(t, st.Deactivate(ctx, "a"))
		require.NoError(t, st.Deactivate(ctx, "never-existed"))

		active, err = st.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "b", active[0].ID)

		got, err := st.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, got.Active)
		assert.Equal(t, int64(61), got.ExpiresAt)
	})

	t.Run("survives reopen", func(t *testing.T) {
		path := newPath()
		st := mustOpen(t, path)
		require.NoError(t, st.Insert(ctx, domain.TimedBlock{ID: "a", Domain: "a.com", CreatedAt: 1, ExpiresAt: 61, Active: true}))
		require.NoError(t, st.Close())

		st = mustOpen(t, path)
		defer func() { _ = st.Close() }()
		active, err := st.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "a.com", active[0].Domain)
	})

	t.Run("nicknames", func(t *testing.T) {
		st := mustOpen(t, newPath())
		defer func() { _ = st.Close() }()

		icon := "laptop"
		require.NoError(t, st.UpsertNickname(ctx, domain.DeviceNickname{MAC: "aa:bb", Nickname: "old"}))
		require.NoError(t, st.UpsertNickname(ctx, domain.DeviceNickname{MAC: "aa:bb", Nickname: "Work", Icon: &icon}))
		require.NoError(t, st.UpsertNickname(ctx, domain.DeviceNickname{MAC: "cc:dd", Nickname: "TV"}))

		got, err := st.ListNicknames(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Work", got["aa:bb"].Nickname)
		require.NotNil(t, got["aa:bb"].Icon)
		assert.Equal(t, "laptop", *got["aa:bb"].Icon)
		assert.Nil(t, got["cc:dd"].Icon)
	})
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore/storetest"
)

func TestSqliteStore_Conformance(t *testing.T) {
	dir := t.TempDir()
	n := 0
	storetest.Run(t, New, func() string {
		n++
		return filepath.Join(dir, fmt.Sprintf("dash%d.db", n))
	})
}

func TestSqliteStore_AdoptsLegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE device_nicknames (mac TEXT PRIMARY KEY, nickname TEXT NOT NULL, icon TEXT);
		CREATE TABLE timed_blocks (id TEXT PRIMARY KEY, domain TEXT NOT NULL, created_at INTEGER NOT NULL, expires_at INTEGER NOT NULL, active BOOLEAN NOT NULL DEFAULT 1);
		INSERT INTO timed_blocks VALUES ('old', 'legacy.com', 10, 70, 1);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	st, err := New(path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	active, err := st.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.TimedBlock{ID: "old", Domain: "legacy.com", CreatedAt: 10, ExpiresAt: 70, Active: true}, active[0])
}

func TestSqliteStore_ClosedDatabaseIsPersistenceError(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "dash.db"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	err = st.Deactivate(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

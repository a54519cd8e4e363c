package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore/storetest"
)

func TestBoltStore_Conformance(t *testing.T) {
	dir := t.TempDir()
	n := 0
	storetest.Run(t, New, func() string {
		n++
		return filepath.Join(dir, fmt.Sprintf("dash%d.db", n))
	})
}

func TestBoltStore_New_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "dash.db"))
	assert.Error(t, err)
}

func TestBoltStore_CorruptValue(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "dash.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	bs := st.(*boltStore)
	require.NoError(t, bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).Put([]byte("bad"), []byte("{not json"))
	}))

	_, err = st.ListActive(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = st.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

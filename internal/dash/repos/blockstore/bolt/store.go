package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore"
)

var (
	bucketBlocks    = []byte("timed_blocks")
	bucketNicknames = []byte("device_nicknames")
)

// boltStore implements blockstore.Store using bbolt. Values are JSON.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (blockstore.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketBlocks); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketNicknames); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Insert(_ context.Context, b domain.TimedBlock) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(bucketBlocks)
		if bk.Get([]byte(b.ID)) != nil {
			return fmt.Errorf("timed block %s: %w", b.ID, domain.ErrDuplicateKey)
		}
		v, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return bk.Put([]byte(b.ID), v)
	})
	return domain.Persistence("insert timed block", err)
}

func (s *boltStore) Get(_ context.Context, id string) (domain.TimedBlock, error) {
	var b domain.TimedBlock
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketBlocks).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("timed block %s: %w", id, domain.ErrNotFound)
		}
		return json.Unmarshal(v, &b)
	})
	return b, domain.Persistence("get timed block", err)
}

func (s *boltStore) ListActive(_ context.Context) ([]domain.TimedBlock, error) {
	var out []domain.TimedBlock
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).ForEach(func(_, v []byte) error {
			var b domain.TimedBlock
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			if b.Active {
				out = append(out, b)
			}
			return nil
		})
	})
	if err != nil {
		return nil, domain.Persistence("list active timed blocks", err)
	}
	return out, nil
}

func (s *boltStore) Deactivate(_ context.Context, id string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(bucketBlocks)
		v := bk.Get([]byte(id))
		if v == nil {
			return nil
		}
		var b domain.TimedBlock
		if err := json.Unmarshal(v, &b); err != nil {
			return err
		}
		if !b.Active {
			return nil
		}
		b.Active = false
		nv, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return bk.Put([]byte(id), nv)
	})
	return domain.Persistence("deactivate timed block", err)
}

func (s *boltStore) ListNicknames(_ context.Context) (map[string]domain.DeviceNickname, error) {
	out := make(map[string]domain.DeviceNickname)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNicknames).ForEach(func(_, v []byte) error {
			var n domain.DeviceNickname
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			out[n.MAC] = n
			return nil
		})
	})
	if err != nil {
		return nil, domain.Persistence("list nicknames", err)
	}
	return out, nil
}

func (s *boltStore) UpsertNickname(_ context.Context, n domain.DeviceNickname) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		v, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketNicknames).Put([]byte(n.MAC), v)
	})
	return domain.Persistence("upsert nickname", err)
}

var _ blockstore.Store = (*boltStore)(nil)

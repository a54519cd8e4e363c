package blockstore

import (
	"context"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// Store is the durable home of timed block records and device nicknames.
// It is the source of truth across restarts; the scheduler only mirrors
// the active subset in memory.
//
//   - Insert fails with domain.ErrDuplicateKey when the id exists.
//   - Get fails with domain.ErrNotFound when the id is unknown.
//   - ListActive returns rows with Active=true in no particular order.
//   - Deactivate is idempotent and a no-op for unknown ids.
//   - UpsertNickname inserts or overwrites by MAC.
//
// Other failures are reported as *domain.PersistenceError.
type Store interface {
	Insert(ctx context.Context, b domain.TimedBlock) error
	Get(ctx context.Context, id string) (domain.TimedBlock, error)
	ListActive(ctx context.Context) ([]domain.TimedBlock, error)
	Deactivate(ctx context.Context, id string) error

	ListNicknames(ctx context.Context) (map[string]domain.DeviceNickname, error)
	UpsertNickname(ctx context.Context, n domain.DeviceNickname) error

	Close() error
}

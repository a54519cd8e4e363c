package scheduler

import (
	"context"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// Filter applies and lifts wildcard blocks on the external filter.
type Filter interface {
	AddWildcard(ctx context.Context, name, comment string) error
	RemoveWildcard(ctx context.Context, name string) error
}

// Store is the subset of the durable block store the scheduler needs.
type Store interface {
	Insert(ctx context.Context, b domain.TimedBlock) error
	ListActive(ctx context.Context) ([]domain.TimedBlock, error)
	Deactivate(ctx context.Context, id string) error
}

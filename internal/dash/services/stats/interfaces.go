package stats

import (
	"context"
	"time"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// QueryLog is the read side of the query log consumed by Service.
type QueryLog interface {
	Summary(ctx context.Context, since int64) (domain.Summary, error)
	TopDomains(ctx context.Context, since int64, limit int) ([]domain.DomainCount, error)
	TopBlocked(ctx context.Context, since int64, limit int) ([]domain.DomainCount, error)
	OverTime(ctx context.Context, since int64) ([]domain.TimeBucket, error)
	HourlyPattern(ctx context.Context, since int64) ([]domain.HourlyCount, error)
	BlocklistSources(ctx context.Context, since int64) ([]domain.SourceCount, error)
	Queries(ctx context.Context, f domain.QueryFilter) (domain.QueryPage, error)
	Search(ctx context.Context, q string, since int64, limit int) ([]domain.QueryLogEntry, error)
}

// ReferenceClock anchors statistics windows to data time.
type ReferenceClock interface {
	Now(ctx context.Context) int64
	Since(ctx context.Context, d time.Duration) int64
}

package api

import (
	"context"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

type Stats interface {
	Summary(ctx context.Context, hours int) (domain.Summary, error)
	TopDomains(ctx context.Context, hours, limit int) ([]domain.DomainCount, error)
	TopBlocked(ctx context.Context, hours, limit int) ([]domain.DomainCount, error)
	OverTime(ctx context.Context, hours int) ([]domain.TimeBucket, error)
	HourlyPattern(ctx context.Context, days int) ([]domain.HourlyCount, error)
	BlocklistEffectiveness(ctx context.Context) ([]domain.SourceCount, error)
	Queries(ctx context.Context, f domain.QueryFilter) (domain.QueryPage, error)
	Search(ctx context.Context, q string, hours int) ([]domain.QueryLogEntry, error)
}

type Devices interface {
	List(ctx context.Context) ([]domain.NetworkDevice, error)
	SetNickname(ctx context.Context, mac, nickname string, icon *string) (domain.DeviceNickname, error)
	Stats(ctx context.Context, mac string, hours int) (domain.Summary, error)
	Activity(ctx context.Context, mac string, hours int) ([]domain.TimeBucket, error)
	TopDomains(ctx context.Context, mac string, limit int) ([]domain.DomainCount, error)
	TopBlocked(ctx context.Context, mac string, limit int) ([]domain.DomainCount, error)
}

type Lists interface {
	List(ctx context.Context, kind *domain.ListKind) ([]domain.DomainListEntry, error)
	Add(ctx context.Context, kind domain.ListKind, value, comment string) (string, error)
	Delete(ctx context.Context, id int64) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Adlists(ctx context.Context) ([]domain.Adlist, error)
	Presets() map[string]domain.Preset
}

// TimedBlocks is the scheduler as seen by request handlers.
type TimedBlocks interface {
	Create(ctx context.Context, rawDomain string, durationMinutes int) (domain.TimedBlock, error)
	Cancel(ctx context.Context, id string) error
	List() []domain.TimedBlockStatus
}

// Package stats serves the dashboard's aggregate views of the query log.
package stats

import (
	"context"
	"time"

	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/repos/querycache"
)

// SearchLimit caps the number of rows returned by Search.
const SearchLimit = 50

const day = 24 * time.Hour

type Options struct {
	Log   QueryLog
	Clock ReferenceClock
	Cache *querycache.Cache
}

// Service answers statistics requests. Aggregates are memoised in the
// query cache; the paged log and search always hit the database.
type Service struct {
	log   QueryLog
	clock ReferenceClock
	cache *querycache.Cache
}

func NewService(opts Options) *Service {
	return &Service{log: opts.Log, clock: opts.Clock, cache: opts.Cache}
}

func hoursAgo(hours int) time.Duration { return time.Duration(hours) * time.Hour }

func (s *Service) Summary(ctx context.Context, hours int) (domain.Summary, error) {
	return querycache.Fetch(s.cache, querycache.ClassStats, querycache.Key("summary", hours), func() (domain.Summary, error) {
		return s.log.Summary(ctx, s.clock.Since(ctx, hoursAgo(hours)))
	})
}

func (s *Service) TopDomains(ctx context.Context, hours, limit int) ([]domain.DomainCount, error) {
	return querycache.Fetch(s.cache, querycache.ClassStats, querycache.Key("top_domains", hours, limit), func() ([]domain.DomainCount, error) {
		return s.log.TopDomains(ctx, s.clock.Since(ctx, hoursAgo(hours)), limit)
	})
}

func (s *Service) TopBlocked(ctx context.Context, hours, limit int) ([]domain.DomainCount, error) {
	return querycache.Fetch(s.cache, querycache.ClassStats, querycache.Key("top_blocked", hours, limit), func() ([]domain.DomainCount, error) {
		return s.log.TopBlocked(ctx, s.clock.Since(ctx, hoursAgo(hours)), limit)
	})
}

func (s *Service) OverTime(ctx context.Context, hours int) ([]domain.TimeBucket, error) {
	return querycache.Fetch(s.cache, querycache.ClassStats, querycache.Key("over_time", hours), func() ([]domain.TimeBucket, error) {
		return s.log.OverTime(ctx, s.clock.Since(ctx, hoursAgo(hours)))
	})
}

func (s *Service) HourlyPattern(ctx context.Context, days int) ([]domain.HourlyCount, error) {
	return querycache.Fetch(s.cache, querycache.ClassHeavy, querycache.Key("hourly_pattern", days), func() ([]domain.HourlyCount, error) {
		return s.log.HourlyPattern(ctx, s.clock.Since(ctx, time.Duration(days)*day))
	})
}

// BlocklistEffectiveness ranks the lists that blocked the most queries in the last day.
func (s *Service) BlocklistEffectiveness(ctx context.Context) ([]domain.SourceCount, error) {
	return querycache.Fetch(s.cache, querycache.ClassHeavy, querycache.Key("blocklist_effectiveness"), func() ([]domain.SourceCount, error) {
		return s.log.BlocklistSources(ctx, s.clock.Since(ctx, day))
	})
}

// Queries returns one page of the log. A missing range defaults to the
// day ending at the reference time.
func (s *Service) Queries(ctx context.Context, f domain.QueryFilter) (domain.QueryPage, error) {
	if f.From == nil || f.To == nil {
		now := s.clock.Now(ctx)
		if f.From == nil {
			from := now - int64(day/time.Second)
			f.From = &from
		}
		if f.To == nil {
			f.To = &now
		}
	}
	return s.log.Queries(ctx, f)
}

func (s *Service) Search(ctx context.Context, q string, hours int) ([]domain.QueryLogEntry, error) {
	return s.log.Search(ctx, q, s.clock.Since(ctx, hoursAgo(hours)), SearchLimit)
}

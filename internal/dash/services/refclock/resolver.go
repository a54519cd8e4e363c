// Package refclock derives "now" from the newest row in the query log so
// that statistics windows stay populated when the host clock and the data
// disagree.
package refclock

import (
	"context"
	"sync"
	"time"

	"github.com/haukened/pihole-dash/internal/dash/common/clock"
	"github.com/haukened/pihole-dash/internal/dash/common/log"
	"github.com/haukened/pihole-dash/internal/dash/infra/metrics"
)

// DefaultRefresh is how long a resolved reference time is reused.
const DefaultRefresh = 30 * time.Second

// Source reports the newest observed query timestamp.
type Source interface {
	MaxTimestamp(ctx context.Context) (ts int64, ok bool, err error)
}

type Options struct {
	Source  Source
	Clock   clock.Clock
	Refresh time.Duration
	Logger  log.Logger
}

// Resolver caches the reference time for Refresh of wall time.
type Resolver struct {
	src     Source
	clock   clock.Clock
	refresh time.Duration
	logger  log.Logger

	mu        sync.Mutex
	cached    int64
	fetchedAt time.Time
	valid     bool
}

func NewResolver(opts Options) *Resolver {
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Resolver{
		src:     opts.Source,
		clock:   opts.Clock,
		refresh: opts.Refresh,
		logger:  opts.Logger,
	}
}

// Now returns the reference time in unix seconds. It never fails: an empty
// or unreachable log yields wall time, which is cached like a real value.
func (r *Resolver) Now(ctx context.Context) int64 {
	wall := r.clock.Now()

	r.mu.Lock()
	if r.valid && wall.Sub(r.fetchedAt) < r.refresh {
		v := r.cached
		r.mu.Unlock()
		return v
	}
	r.mu.Unlock()

	ts, ok, err := r.src.MaxTimestamp(ctx)
	switch {
	case err != nil:
		r.logger.Warn(map[string]any{"error": err.Error()}, "query log unavailable, using wall clock as reference")
		metrics.ReferenceClockFallbacks.Inc()
		ts = wall.Unix()
	case !ok:
		r.logger.Debug(nil, "query log empty, using wall clock as reference")
		metrics.ReferenceClockFallbacks.Inc()
		ts = wall.Unix()
	}

	r.mu.Lock()
	r.cached = ts
	r.fetchedAt = wall
	r.valid = true
	r.mu.Unlock()
	return ts
}

// Since returns the reference time minus d, in unix seconds.
func (r *Resolver) Since(ctx context.Context, d time.Duration) int64 {
	return r.Now(ctx) - int64(d/time.Second)
}

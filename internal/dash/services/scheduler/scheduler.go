// Package scheduler owns the lifecycle of timed domain blocks: it applies
// them to the filter, remembers them durably, and lifts them when they
// expire or are cancelled.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haukened/pihole-dash/internal/dash/common/clock"
	"github.com/haukened/pihole-dash/internal/dash/common/log"
	"github.com/haukened/pihole-dash/internal/dash/common/utils"
	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/infra/metrics"
)

// DefaultInterval is the sweep period when none is configured.
const DefaultInterval = 30 * time.Second

const (
	reasonExpired   = "expired"
	reasonCancelled = "cancelled"
	reasonRecovered = "recovered"
)

// tracked is the in-memory state of one active block.
//
// removed records that the external wildcard is already gone, so a retry
// only needs the durable deactivation. doomed marks a cancel that failed
// and must be retried before expires_at. busy is set while one caller is
// running the expiration stages.
type tracked struct {
	block   domain.TimedBlock
	removed bool
	doomed  bool
	busy    bool
}

type Options struct {
	Filter   Filter
	Store    Store
	Clock    clock.Clock
	Interval time.Duration
	Logger   log.Logger
	NewID    func() string
}

// Scheduler is safe for concurrent use by request handlers and its own
// sweep loop. The map lock is never held across a command or store call.
type Scheduler struct {
	filter   Filter
	store    Store
	clock    clock.Clock
	interval time.Duration
	logger   log.Logger
	newID    func() string

	mu     sync.Mutex
	blocks map[string]*tracked

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Scheduler{
		filter:   opts.Filter,
		store:    opts.Store,
		clock:    opts.Clock,
		interval: opts.Interval,
		logger:   opts.Logger,
		newID:    opts.NewID,
		blocks:   make(map[string]*tracked),
	}
}

// Create blocks rawDomain and its subdomains for durationMinutes.
//
// If the filter rejects the block nothing is recorded. Any other filter
// failure leaves its state unknown, so the block is recorded and tracked
// anyway and the error is returned with it. If the filter accepts it but the
// store does not, the block is still tracked so it lifts on schedule, but it
// will not survive a restart; the persistence error is returned.
//
// Both calls run detached from ctx cancellation. The runner's timeout bounds them.
func (s *Scheduler) Create(ctx context.Context, rawDomain string, durationMinutes int) (domain.TimedBlock, error) {
	name, err := utils.NormalizeDomain(rawDomain)
	if err != nil {
		return domain.TimedBlock{}, fmt.Errorf("%w: %v", domain.ErrInvalidDomain, err)
	}
	b, err := domain.NewTimedBlock(s.newID(), name, s.clock.Now().Unix(), durationMinutes)
	if err != nil {
		return domain.TimedBlock{}, err
	}

	work := context.WithoutCancel(ctx)
	applyErr := s.filter.AddWildcard(work, b.Domain, b.Comment())
	if applyErr != nil && errors.Is(applyErr, domain.ErrCommandFailed) {
		return domain.TimedBlock{}, fmt.Errorf("apply timed block for %s: %w", b.Domain, applyErr)
	}

	persistErr := s.store.Insert(work, b)
	s.track(b)
	metrics.TimedBlocksCreated.Inc()

	if applyErr != nil {
		s.logger.Warn(map[string]any{
			"id":     b.ID,
			"domain": b.Domain,
			"error":  applyErr.Error(),
		}, "Timed block outcome unknown, tracking for removal")
		errs := []error{fmt.Errorf("apply timed block for %s: %w", b.Domain, applyErr)}
		if persistErr != nil {
			errs = append(errs, fmt.Errorf("persist timed block %s: %w", b.ID, persistErr))
		}
		return b, errors.Join(errs...)
	}

	if persistErr != nil {
		s.logger.Error(map[string]any{
			"id":     b.ID,
			"domain": b.Domain,
			"error":  persistErr.Error(),
		}, "Timed block applied to filter but not persisted")
		return b, fmt.Errorf("persist timed block %s: %w", b.ID, persistErr)
	}

	s.logger.Info(map[string]any{
		"id":         b.ID,
		"domain":     b.Domain,
		"expires_at": b.ExpiresAt,
	}, "Timed block created")
	return b, nil
}

// Cancel lifts block id now. It returns domain.ErrNotFound when id is not
// active and domain.ErrInProgress while a sweep or another cancel holds it.
// A failed cancel is retried by the next sweep.
func (s *Scheduler) Cancel(ctx context.Context, id string) error {
	b, removed, err := s.claim(id, true)
	if err != nil {
		return fmt.Errorf("timed block %s: %w", id, err)
	}
	return s.expire(ctx, b, removed, reasonCancelled)
}

// List returns every tracked block with its remaining time, soonest first.
func (s *Scheduler) List() []domain.TimedBlockStatus {
	now := s.clock.Now().Unix()
	s.mu.Lock()
	out := make([]domain.TimedBlockStatus, 0, len(s.blocks))
	for _, t := range s.blocks {
		out = append(out, t.block.StatusAt(now))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt != out[j].ExpiresAt {
			return out[i].ExpiresAt < out[j].ExpiresAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Sweep expires every due block and retries failed cancels. A failure on
// one block is logged and left for the next sweep.
func (s *Scheduler) Sweep(ctx context.Context) {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	now := s.clock.Now().Unix()
	type due struct {
		id     string
		reason string
	}
	var pending []due
	s.mu.Lock()
	for id, t := range s.blocks {
		switch {
		case t.busy:
		case t.doomed:
			pending = append(pending, due{id, reasonCancelled})
		case t.block.IsExpired(now):
			pending = append(pending, due{id, reasonExpired})
		}
	}
	s.mu.Unlock()

	for _, d := range pending {
		b, removed, err := s.claim(d.id, false)
		if err != nil {
			continue
		}
		if err := s.expire(ctx, b, removed, d.reason); err != nil {
			s.logger.Warn(map[string]any{
				"id":     b.ID,
				"domain": b.Domain,
				"error":  err.Error(),
			}, "Timed block expiry failed, will retry")
		}
	}
}

// Recover reloads active blocks from the store. Blocks already past
// expires_at are lifted now; the rest are tracked without touching the
// filter. Blocks that fail to lift stay tracked for the sweep.
func (s *Scheduler) Recover(ctx context.Context) error {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load active timed blocks: %w", err)
	}
	now := s.clock.Now().Unix()
	var expired []domain.TimedBlock
	for _, b := range active {
		s.track(b)
		if b.IsExpired(now) {
			expired = append(expired, b)
		}
	}

	var errs []error
	for _, b := range expired {
		cb, removed, err := s.claim(b.ID, false)
		if err != nil {
			continue
		}
		if err := s.expire(ctx, cb, removed, reasonRecovered); err != nil {
			s.logger.Warn(map[string]any{
				"id":     b.ID,
				"domain": b.Domain,
				"error":  err.Error(),
			}, "Failed to lift expired timed block during recovery")
			errs = append(errs, err)
		}
	}

	s.logger.Info(map[string]any{
		"active":  len(active),
		"expired": len(expired),
		"failed":  len(errs),
	}, "Timed blocks recovered")
	return errors.Join(errs...)
}

// Start recovers persisted blocks and launches the sweep loop. Recovery
// failures are logged and never prevent startup.
func (s *Scheduler) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if err := s.Recover(ctx); err != nil {
		s.logger.Error(map[string]any{"error": err.Error()}, "Timed block recovery incomplete")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(loopCtx, s.done)

	s.logger.Info(map[string]any{"interval": s.interval.String()}, "Timed block scheduler started")
	return nil
}

// Stop ends the sweep loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return nil
	}
	s.cancel()
	<-s.done
	s.running = false
	s.logger.Info(nil, "Timed block scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Expirations in flight must complete even when shutdown begins.
			s.Sweep(context.WithoutCancel(ctx))
		}
	}
}

func (s *Scheduler) track(b domain.TimedBlock) {
	s.mu.Lock()
	if _, ok := s.blocks[b.ID]; !ok {
		s.blocks[b.ID] = &tracked{block: b}
	}
	metrics.TimedBlocksActive.Set(float64(len(s.blocks)))
	s.mu.Unlock()
}

// claim reserves id for one expiration attempt.
func (s *Scheduler) claim(id string, doom bool) (domain.TimedBlock, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.blocks[id]
	if !ok {
		return domain.TimedBlock{}, false, domain.ErrNotFound
	}
	if t.busy {
		return domain.TimedBlock{}, false, domain.ErrInProgress
	}
	if doom {
		t.doomed = true
	}
	t.busy = true
	return t.block, t.removed, nil
}

// expire runs the remaining stages for a claimed block: lift the external
// wildcard, then deactivate the durable record. A caller going away must not
// cut a removal short.
func (s *Scheduler) expire(ctx context.Context, b domain.TimedBlock, removed bool, reason string) error {
	ctx = context.WithoutCancel(ctx)
	if !removed {
		if err := s.filter.RemoveWildcard(ctx, b.Domain); err != nil {
			s.release(b.ID, false)
			metrics.TimedBlockFailures.WithLabelValues("remove").Inc()
			return fmt.Errorf("lift timed block for %s: %w", b.Domain, err)
		}
	}
	if err := s.store.Deactivate(ctx, b.ID); err != nil {
		s.release(b.ID, true)
		metrics.TimedBlockFailures.WithLabelValues("deactivate").Inc()
		return fmt.Errorf("deactivate timed block %s: %w", b.ID, err)
	}

	s.mu.Lock()
	delete(s.blocks, b.ID)
	metrics.TimedBlocksActive.Set(float64(len(s.blocks)))
	s.mu.Unlock()
	metrics.TimedBlocksEnded.WithLabelValues(reason).Inc()

	s.logger.Info(map[string]any{
		"id":     b.ID,
		"domain": b.Domain,
		"reason": reason,
	}, "Timed block lifted")
	return nil
}

func (s *Scheduler) release(id string, removed bool) {
	s.mu.Lock()
	if t, ok := s.blocks[id]; ok {
		t.busy = false
		t.removed = t.removed || removed
	}
	s.mu.Unlock()
}

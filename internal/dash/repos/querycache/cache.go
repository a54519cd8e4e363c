// Package querycache memoises expensive read queries for a short, per-class TTL.
//
// Entries are never invalidated by writes elsewhere in the system; staleness
// is bounded only by the TTL of the entry's class.
package querycache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/pihole-dash/internal/dash/common/clock"
	"github.com/haukened/pihole-dash/internal/dash/infra/metrics"
)

// Class selects the TTL an entry is held for.
type Class int

const (
	// ClassStats is for frequently changing aggregates.
	ClassStats Class = iota
	// ClassHeavy is for expensive multi-bucket computations.
	ClassHeavy
)

func (c Class) String() string {
	switch c {
	case ClassStats:
		return "stats"
	case ClassHeavy:
		return "heavy"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

type entry struct {
	value    any
	storedAt time.Time
	seq      uint64
}

// Options configures a Cache.
type Options struct {
	Size     int
	StatsTTL time.Duration
	HeavyTTL time.Duration
	Clock    clock.Clock
}

// Cache is a bounded, TTL-by-class memo table safe for concurrent use.
type Cache struct {
	lru    *lru.Cache[string, entry]
	ttl    map[Class]time.Duration
	clock  clock.Clock
	hits   uint64
	misses uint64

	// writeMu orders Put against the removal of a stale entry.
	writeMu sync.Mutex
	seq     uint64
}

// New creates a Cache. Size bounds the number of distinct keys held.
func New(opts Options) (*Cache, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", opts.Size)
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	l, err := lru.New[string, entry](opts.Size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		lru: l,
		ttl: map[Class]time.Duration{
			ClassStats: opts.StatsTTL,
			ClassHeavy: opts.HeavyTTL,
		},
		clock: opts.Clock,
	}, nil
}

// Get returns the value stored under key if it is younger than the class TTL.
func (c *Cache) Get(class Class, key string) (any, bool) {
	k := scoped(class, key)
	e, ok := c.lru.Get(k)
	if !ok {
		c.miss(class, "miss")
		return nil, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl[class] {
		c.dropStale(k, e)
		c.miss(class, "stale")
		return nil, false
	}
	atomic.AddUint64(&c.hits, 1)
	metrics.CacheRequests.WithLabelValues(class.String(), "hit").Inc()
	return e.value, true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache) Put(class Class, key string, value any) {
	c.writeMu.Lock()
	c.seq++
	c.lru.Add(scoped(class, key), entry{value: value, storedAt: c.clock.Now(), seq: c.seq})
	c.writeMu.Unlock()
}

// dropStale removes k only if it still holds the entry seen by Get, so a
// value written since then survives.
func (c *Cache) dropStale(k string, seen entry) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if cur, ok := c.lru.Peek(k); ok && cur.seq == seen.seq {
		c.lru.Remove(k)
	}
}

// Len returns the number of entries held, fresh or not.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge drops every entry.
func (c *Cache) Purge() { c.lru.Purge() }

// Stats returns cumulative hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

func (c *Cache) miss(class Class, result string) {
	atomic.AddUint64(&c.misses, 1)
	metrics.CacheRequests.WithLabelValues(class.String(), result).Inc()
}

func scoped(class Class, key string) string {
	return class.String() + "|" + key
}

// Key builds a cache key from an operation name and its parameters.
func Key(op string, params ...any) string {
	var sb strings.Builder
	sb.WriteString(op)
	for _, p := range params {
		sb.WriteByte(':')
		fmt.Fprint(&sb, p)
	}
	return sb.String()
}

// Fetch returns the cached value for key or computes, stores and returns it.
// Errors from compute are returned as-is and nothing is stored.
func Fetch[T any](c *Cache, class Class, key string, compute func() (T, error)) (T, error) {
	if v, ok := c.Get(class, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Put(class, key, v)
	return v, nil
}

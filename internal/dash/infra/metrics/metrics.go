// Package metrics holds the Prometheus collectors shared by the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TimedBlocksActive tracks blocks currently held by the scheduler.
	TimedBlocksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "piholedash_timed_blocks_active",
			Help: "Number of timed blocks currently active",
		},
	)

	TimedBlocksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "piholedash_timed_blocks_created_total",
			Help: "Total number of timed blocks created",
		},
	)

	// TimedBlocksEnded counts blocks deactivated, by reason (expired, cancelled, recovered).
	TimedBlocksEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piholedash_timed_blocks_ended_total",
			Help: "Total number of timed blocks deactivated",
		},
		[]string{"reason"},
	)

	// TimedBlockFailures counts failed expiration stages (remove, deactivate).
	TimedBlockFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piholedash_timed_block_failures_total",
			Help: "Total number of failed timed block expiration stages",
		},
		[]string{"stage"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "piholedash_sweep_duration_seconds",
			Help:    "Duration of timed block sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CommandsTotal counts filter binary invocations by verb and result (ok, failed, error).
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piholedash_commands_total",
			Help: "Total number of filter binary invocations",
		},
		[]string{"verb", "result"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "piholedash_command_duration_seconds",
			Help:    "Filter binary invocation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"verb"},
	)

	// CacheRequests counts query cache lookups by class and result (hit, miss, stale).
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piholedash_cache_requests_total",
			Help: "Total number of query cache lookups",
		},
		[]string{"class", "result"},
	)

	// ReferenceClockFallbacks counts reference clock refreshes that fell back to wall time.
	ReferenceClockFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "piholedash_reference_clock_fallbacks_total",
			Help: "Total number of reference clock refreshes that used wall time",
		},
	)
)

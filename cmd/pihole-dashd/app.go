package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/haukened/pihole-dash/internal/dash/common/clock"
	"github.com/haukened/pihole-dash/internal/dash/common/log"
	"github.com/haukened/pihole-dash/internal/dash/config"
	"github.com/haukened/pihole-dash/internal/dash/gateways/api"
	"github.com/haukened/pihole-dash/internal/dash/gateways/pihole"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore/bolt"
	"github.com/haukened/pihole-dash/internal/dash/repos/blockstore/sqlite"
	"github.com/haukened/pihole-dash/internal/dash/repos/ftl"
	"github.com/haukened/pihole-dash/internal/dash/repos/gravity"
	"github.com/haukened/pihole-dash/internal/dash/repos/querycache"
	"github.com/haukened/pihole-dash/internal/dash/services/devices"
	"github.com/haukened/pihole-dash/internal/dash/services/lists"
	"github.com/haukened/pihole-dash/internal/dash/services/refclock"
	"github.com/haukened/pihole-dash/internal/dash/services/scheduler"
	"github.com/haukened/pihole-dash/internal/dash/services/stats"
)

// Application holds all the components of the dashboard backend.
type Application struct {
	config    *config.AppConfig
	server    *api.Server
	scheduler *scheduler.Scheduler
	closers   []io.Closer
}

// repositories holds all repository implementations
type repositories struct {
	store   blockstore.Store
	ftl     *ftl.Repository
	gravity *gravity.Repository
	cache   *querycache.Cache
}

func (r *repositories) closers() []io.Closer {
	var out []io.Closer
	if r.store != nil {
		out = append(out, r.store)
	}
	if r.ftl != nil {
		out = append(out, r.ftl)
	}
	if r.gravity != nil {
		out = append(out, r.gravity)
	}
	return out
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	clk := &clock.RealClock{}
	logger := log.GetLogger()

	repos, err := buildRepositories(cfg, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	runner := pihole.NewExecRunner(pihole.Options{
		Command: cfg.PiholeCommand,
		UseSudo: cfg.UseSudo,
		Timeout: cfg.CommandTimeout,
		Logger:  log.WithComponent(logger, "pihole"),
	})
	filter := pihole.NewClient(runner)

	log.Info(map[string]any{
		"command": cfg.PiholeCommand,
		"sudo":    cfg.UseSudo,
		"timeout": cfg.CommandTimeout.String(),
	}, "Filter command configured")

	reference := refclock.NewResolver(refclock.Options{
		Source:  repos.ftl,
		Clock:   clk,
		Refresh: cfg.ReferenceRefresh,
		Logger:  log.WithComponent(logger, "refclock"),
	})

	statsService := stats.NewService(stats.Options{
		Log:   repos.ftl,
		Clock: reference,
		Cache: repos.cache,
	})
	devicesService := devices.NewService(devices.Options{
		Network:   repos.ftl,
		Nicknames: repos.store,
		Clock:     reference,
	})
	listsService := lists.NewService(lists.Options{
		Repo:   repos.gravity,
		Filter: filter,
	})
	sched := scheduler.New(scheduler.Options{
		Filter:   filter,
		Store:    repos.store,
		Clock:    clk,
		Interval: cfg.SweepInterval,
		Logger:   log.WithComponent(logger, "scheduler"),
	})

	router := api.NewRouter(api.Options{
		Stats:       statsService,
		Devices:     devicesService,
		Lists:       listsService,
		TimedBlocks: sched,
		Logger:      log.WithComponent(logger, "http"),
		StaticDir:   cfg.StaticDir,
	})

	return &Application{
		config:    cfg,
		server:    api.NewServer(cfg.Address(), router, log.WithComponent(logger, "http")),
		scheduler: sched,
		closers:   repos.closers(),
	}, nil
}

// buildRepositories opens every database. On failure, anything already
// opened is closed again.
func buildRepositories(cfg *config.AppConfig, clk clock.Clock) (*repositories, error) {
	repos := &repositories{}
	var err error
	defer func() {
		if err != nil {
			closeAll(repos.closers())
		}
	}()

	repos.store, err = openStore(cfg)
	if err != nil {
		return nil, err
	}
	log.Info(map[string]any{
		"backend": cfg.StoreBackend,
		"path":    cfg.DashboardDBPath,
	}, "Dashboard store opened")

	repos.ftl, err = ftl.Open(cfg.FTLDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open query log: %w", err)
	}

	repos.gravity, err = gravity.Open(cfg.GravityDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open list database: %w", err)
	}

	repos.cache, err = querycache.New(querycache.Options{
		Size:     cfg.CacheSize,
		StatsTTL: cfg.StatsCacheTTL,
		HeavyTTL: cfg.HeavyCacheTTL,
		Clock:    clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	log.Info(map[string]any{
		"type":      "LRU",
		"size":      cfg.CacheSize,
		"stats_ttl": cfg.StatsCacheTTL.String(),
		"heavy_ttl": cfg.HeavyCacheTTL.String(),
	}, "Query cache configured")

	return repos, nil
}

// openStore opens the dashboard store with the configured backend.
func openStore(cfg *config.AppConfig) (blockstore.Store, error) {
	var (
		store blockstore.Store
		err   error
	)
	switch cfg.StoreBackend {
	case "sqlite":
		store, err = sqlite.New(cfg.DashboardDBPath)
	case "bolt":
		store, err = bolt.New(cfg.DashboardDBPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dashboard store: %w", err)
	}
	return store, nil
}

// Run starts the scheduler and HTTP server and blocks until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	defer closeAll(app.closers)

	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if err := app.server.Start(ctx); err != nil {
		_ = app.scheduler.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	log.Info(map[string]any{
		"address": app.server.Address(),
	}, "Dashboard API started")

	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.server.Stop(shutdownCtx); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "Error during HTTP server shutdown")
		errs = append(errs, err)
	}
	if err := app.scheduler.Stop(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "Error during scheduler shutdown")
		errs = append(errs, err)
	}

	if shutdownCtx.Err() != nil {
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout.String()}, "Shutdown timeout exceeded")
		errs = append(errs, fmt.Errorf("shutdown timeout"))
	} else {
		log.Info(nil, "Graceful shutdown completed")
	}
	return errors.Join(errs...)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "Error closing resource")
		}
	}
}

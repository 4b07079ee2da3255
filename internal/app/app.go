// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the sync engine and its providers.
package app

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/openastro/papersync/internal/clock/system"
	"github.com/openastro/papersync/internal/config"
	"github.com/openastro/papersync/internal/feed/arxiv"
	"github.com/openastro/papersync/internal/id/uuid"
	"github.com/openastro/papersync/internal/metrics"
	"github.com/openastro/papersync/internal/notify"
	"github.com/openastro/papersync/internal/runlog"
	snapshotgcs "github.com/openastro/papersync/internal/snapshot"
	snapshotlocal "github.com/openastro/papersync/internal/snapshot/local"
	snapshotmemory "github.com/openastro/papersync/internal/snapshot/memory"
	storememory "github.com/openastro/papersync/internal/store/memory"
	"github.com/openastro/papersync/internal/store/notion"
	syncengine "github.com/openastro/papersync/internal/sync"
)

// App holds the shared, long-lived services for the application. It is
// initialized once at startup and passed to the commands that need it.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	engine    *syncengine.Engine
	store     syncengine.RecordStore
	runLog    syncengine.RunStore
	notifier  syncengine.Notifier
	snapshots syncengine.SnapshotStore

	mu      gosync.Mutex
	latest  syncengine.Report
	hasRun  bool
	closers []func()
}

// New wires every provider selected by the configuration and assembles the
// engine. It fails fast if any provider cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}

	snapshots, err := a.buildSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	a.snapshots = snapshots

	store, err := a.buildStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	runLog, err := a.buildRunLog(ctx)
	if err != nil {
		return nil, err
	}
	a.runLog = runLog

	notifier, err := a.buildNotifier(ctx)
	if err != nil {
		return nil, err
	}
	a.notifier = notifier

	clk := system.New()
	idGen := uuid.New()

	var policy *syncengine.RetryPolicy
	if cfg.Sync.RetryEnabled {
		policy = syncengine.NewRetryPolicy()
	}

	source := arxiv.New(arxiv.Config{
		BaseURL:        cfg.Feed.BaseURL,
		TimeoutSeconds: cfg.Feed.TimeoutSeconds,
		UserAgent:      cfg.Feed.UserAgent,
	}, snapshots, logger)

	fetcher := syncengine.NewFetcher(
		source,
		syncengine.NewRatePacer(cfg.CategoryDelay()),
		cfg.Keywords,
		clk,
		policy,
		syncengine.FetcherConfig{
			Categories:   cfg.Sync.Categories,
			LookbackDays: cfg.Sync.LookbackDays,
			PageLimit:    cfg.Sync.FeedPageLimit,
			MaxAuthors:   cfg.Sync.MaxAuthors,
		},
		logger,
	)

	a.engine = syncengine.NewEngine(
		fetcher,
		syncengine.NewReconciler(store, logger),
		syncengine.NewTrimmer(store, logger),
		store,
		clk,
		idGen,
		syncengine.EngineConfig{
			MaxArticles: cfg.Sync.MaxArticles,
			MaxToAdd:    cfg.Sync.MaxToAdd,
			TopN:        cfg.Sync.TopN,
			PageSize:    cfg.Sync.PageSize,
		},
		logger,
	)

	logger.Info("application services initialized",
		zap.String("store", cfg.Store.Provider),
		zap.String("runlog", cfg.RunLog.Provider),
		zap.String("notifier", cfg.Notifier.Provider),
		zap.String("snapshots", cfg.Snapshots.Provider),
	)
	return a, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Store exposes the configured record store.
func (a *App) Store() syncengine.RecordStore {
	return a.store
}

// RunOnce executes one sync run, persists and publishes the report, and
// records it as the latest. Runs are serialized; a second caller blocks
// until the first finishes.
func (a *App) RunOnce(ctx context.Context) (syncengine.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	report, runErr := a.engine.Run(ctx)

	metrics.ObserveRun(string(report.State), time.Since(start))
	metrics.ObserveRunCounts(report.Fetched, report.Inserted, report.Archived)

	if err := a.runLog.SaveRun(ctx, report); err != nil {
		a.logger.Warn("saving run report failed", zap.Error(err))
	}
	if err := a.notifier.NotifyRun(ctx, report); err != nil {
		a.logger.Warn("publishing run report failed", zap.Error(err))
	}

	a.latest = report
	a.hasRun = true
	return report, runErr
}

// LatestReport returns the most recent run report, if any run has happened.
func (a *App) LatestReport() (syncengine.Report, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest, a.hasRun
}

// Close gracefully shuts down every provider the App owns.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	// Best-effort flush; stderr sync errors on some platforms are harmless.
	_ = a.logger.Sync()
}

func (a *App) buildSnapshots(ctx context.Context) (syncengine.SnapshotStore, error) {
	switch a.cfg.Snapshots.Provider {
	case "gcs":
		store, err := snapshotgcs.NewGCSStore(ctx, a.cfg.Snapshots.GCSBucket, a.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize gcs snapshots: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := store.Close(); err != nil {
				a.logger.Warn("closing gcs snapshot client failed", zap.Error(err))
			}
		})
		return store, nil
	case "local":
		store, err := snapshotlocal.NewStore(a.cfg.Snapshots.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("initialize local snapshots: %w", err)
		}
		return store, nil
	case "memory":
		return snapshotmemory.NewStore(), nil
	case "noop":
		return syncengine.NoopSnapshotStore{}, nil
	default:
		return nil, fmt.Errorf("unknown snapshots provider: %s", a.cfg.Snapshots.Provider)
	}
}

func (a *App) buildStore() (syncengine.RecordStore, error) {
	switch a.cfg.Store.Provider {
	case "notion":
		store, err := notion.New(notion.Config{
			Token:          a.cfg.Store.Notion.Token,
			DatabaseID:     a.cfg.Store.Notion.DatabaseID,
			BaseURL:        a.cfg.Store.Notion.BaseURL,
			TimeoutSeconds: a.cfg.Store.Notion.TimeoutSeconds,
			SourceName:     a.cfg.Store.Notion.SourceName,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize notion store: %w", err)
		}
		return store, nil
	case "memory":
		return storememory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store provider: %s", a.cfg.Store.Provider)
	}
}

func (a *App) buildRunLog(ctx context.Context) (syncengine.RunStore, error) {
	switch a.cfg.RunLog.Provider {
	case "postgres":
		store, err := runlog.NewStore(ctx, runlog.Config{
			DSN:      a.cfg.RunLog.DSN,
			Table:    a.cfg.RunLog.Table,
			MaxConns: a.cfg.RunLog.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize run log: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case "noop":
		return syncengine.NoopRunStore{}, nil
	default:
		return nil, fmt.Errorf("unknown runlog provider: %s", a.cfg.RunLog.Provider)
	}
}

func (a *App) buildNotifier(ctx context.Context) (syncengine.Notifier, error) {
	switch a.cfg.Notifier.Provider {
	case "pubsub":
		notifier, err := notify.NewPubSubNotifier(ctx, a.cfg.Notifier.ProjectID, a.cfg.Notifier.TopicID, a.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize pubsub notifier: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := notifier.Close(); err != nil {
				a.logger.Warn("closing pubsub notifier failed", zap.Error(err))
			}
		})
		return notifier, nil
	case "memory":
		return notify.NewMemoryNotifier(), nil
	case "noop":
		return syncengine.NoopNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown notifier provider: %s", a.cfg.Notifier.Provider)
	}
}

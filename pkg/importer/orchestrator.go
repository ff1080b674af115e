// Package importer implements the Import Orchestrator (C5): the streaming
// producer/consumer sync that drives discovery, the per-file pipeline, and
// run lifecycle management described in spec.md §4.5.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cruiseops/cruisesync/internal/telemetry"
	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/delta"
	"github.com/cruiseops/cruisesync/pkg/ftp"
	"github.com/cruiseops/cruisesync/pkg/refcache"
	"github.com/cruiseops/cruisesync/pkg/upsert"
)

// checkpointInterval is PROGRESS_UPDATE_INTERVAL (§4.5 step 7).
const checkpointInterval = 50

// progressLogInterval is the cadence for plain progress log lines (§4.5
// step 7).
const progressLogInterval = 100

// EnvironmentGuard decides whether this process is allowed to run a sync
// (§4.5). It is satisfied by *config.Config without this package importing
// the config package directly, keeping the orchestrator testable.
type EnvironmentGuard interface {
	IsProduction() bool
}

// Orchestrator drives one sync at a time for the process (§3.3 RunState,
// §4.5).
type Orchestrator struct {
	pool    *pgxpool.Pool
	store   *catalog.Store
	cache   *refcache.Cache
	engine  *upsert.Engine
	tracker *delta.Tracker
	logger  *slog.Logger

	ftpConfig ftp.Config
	rdb       *redis.Client // optional; nil disables the cross-replica status mirror (§0.6)

	guard       EnvironmentGuard
	bypassGuard bool

	state runState
}

// New creates an Orchestrator. rdb may be nil, in which case the Redis
// status mirror and cancel pub/sub subscription are skipped entirely.
func New(pool *pgxpool.Pool, store *catalog.Store, cache *refcache.Cache, tracker *delta.Tracker, logger *slog.Logger, ftpConfig ftp.Config, rdb *redis.Client, guard EnvironmentGuard, bypassGuard bool) *Orchestrator {
	return &Orchestrator{
		pool:        pool,
		store:       store,
		cache:       cache,
		engine:      upsert.New(store, cache),
		tracker:     tracker,
		logger:      logger,
		ftpConfig:   ftpConfig,
		rdb:         rdb,
		guard:       guard,
		bypassGuard: bypassGuard,
	}
}

// Status reports the current run state for /sync/status (§6.3).
func (o *Orchestrator) Status() StatusResult {
	return o.state.snapshot()
}

// Cancel requests cooperative cancellation of the active run, if any
// (§4.5's "Cancellation").
func (o *Orchestrator) Cancel() bool {
	return o.state.cancel()
}

// ErrEnvironmentGuard is raised synchronously when a non-production replica
// attempts a sync without the bypass flag (§4.5, §7).
var ErrEnvironmentGuard = errors.New("cruise sync refused: this process is not pointed at the production API (set BYPASS_SYNC_ENVIRONMENT_GUARD=true to override)")

// Run executes one full sync according to opts. It returns synchronously
// once the run (or dry run) has finished, been cancelled, or failed.
func (o *Orchestrator) Run(ctx context.Context, opts SyncOptions) (*Metrics, error) {
	if !o.guard.IsProduction() && !o.bypassGuard {
		return nil, ErrEnvironmentGuard
	}

	opts = opts.normalize()
	metrics := newMetrics()

	historyID, err := o.store.StartSyncHistory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting sync history: %w", err)
	}

	if err := o.state.begin(historyID, metrics); err != nil {
		return nil, err
	}
	defer o.state.end()

	o.cache.ResetStats()

	control := ftp.NewControlClient(o.ftpConfig, o.logger)
	if err := control.ForceReconnect(); err != nil {
		o.finish(ctx, historyID, "failed", err)
		return metrics, fmt.Errorf("connecting to ftp: %w", err)
	}
	defer func() { _ = control.Disconnect() }()

	if opts.DeltaSync && !opts.ForceFullSync {
		if err := o.tracker.Load(ctx); err != nil {
			o.logger.Warn("loading delta tracker state, proceeding with an empty map", "error", err)
		}
	}

	var pool *ftp.Pool
	if opts.Concurrency > 1 {
		pool = ftp.NewPool(o.ftpConfig, opts.FTPPoolSize)
		defer pool.Drain()
	}

	o.tracker.Start(ctx)
	defer o.tracker.Close()

	var cancelUnsub func()
	if o.rdb != nil {
		cancelUnsub = o.subscribeCancel(ctx)
		defer cancelUnsub()
	}

	lister := ftp.NewLister(control)
	listOpts := ftp.ListOptions{
		Year:              opts.Year,
		Month:             opts.Month,
		LineID:            opts.LineID,
		ShipID:            opts.ShipID,
		IncludeHistorical: opts.IncludeHistorical,
		Cancel:            o.state.cancelRequested,
	}
	if opts.DryRun {
		listOpts.MaxFiles = 100
	} else if opts.MaxFiles > 0 {
		listOpts.MaxFiles = opts.MaxFiles
	}

	items := lister.List(ctx, listOpts)

	if opts.DryRun {
		o.runDryRun(items)
		o.finish(ctx, historyID, "completed", nil)
		o.mirrorStatus(ctx, historyID, metrics, false)
		return o.finalMetrics(), nil
	}

	downloadOpts := ftp.DownloadOptions{
		MaxFileSizeBytes: opts.MaxFileSizeBytes,
		FileTimeoutMs:    opts.FileTimeoutMs,
		RetryAttempts:    opts.RetryAttempts,
		RetryDelayMs:     opts.RetryDelayMs,
	}

	o.runWorkers(ctx, items, opts, downloadOpts, pool, control, historyID)

	status := "completed"
	if o.state.cancelRequested() {
		status = "cancelled"
		o.state.mutateMetrics(func(m *Metrics) { m.Cancelled = true })
	}

	if n, err := o.store.BackfillAlternateSailings(ctx, upsert.Provider); err != nil {
		o.logger.Error("backfilling alternate sailings", "error", err)
	} else if n > 0 {
		o.logger.Info("backfilled alternate sailings", "count", n)
	}

	o.finish(ctx, historyID, status, nil)
	o.mirrorStatus(ctx, historyID, metrics, false)
	final := o.finalMetrics()
	telemetry.SyncDuration.Observe(float64(final.DurationMs) / 1000)
	o.logSummary(final, status)

	return final, nil
}

// finalMetrics returns a race-free copy of the active run's metrics, taken
// under the same lock every in-run mutation uses.
func (o *Orchestrator) finalMetrics() *Metrics {
	var snap Metrics
	o.state.mutateMetrics(func(m *Metrics) { snap = *m })
	return &snap
}

// runDryRun drains up to 100 listing items purely for counting, performing
// no downloads or writes (§4.5 init step 5).
func (o *Orchestrator) runDryRun(items <-chan ftp.Item) {
	for item := range items {
		if item.Err != nil {
			continue
		}
		o.state.mutateMetrics(func(m *Metrics) { m.FilesFound++ })
	}
}

// runWorkers spawns opts.Concurrency goroutines that all range over the
// same items channel. Ranging over a shared channel is itself the
// synchronization for advancing the listing iterator: each item is
// delivered to exactly one worker, and delivery is as brief as a single
// channel receive.
func (o *Orchestrator) runWorkers(ctx context.Context, items <-chan ftp.Item, opts SyncOptions, downloadOpts ftp.DownloadOptions, pool *ftp.Pool, control *ftp.ControlClient, historyID uuid.UUID) {
	var processedCount atomic.Int64
	var checkpointCount atomic.Int64

	done := make(chan struct{})
	for i := 0; i < opts.Concurrency; i++ {
		go func() {
			for item := range items {
				if o.state.cancelRequested() {
					continue
				}
				if item.Err != nil {
					o.logger.Error("listing error", "error", item.Err)
					continue
				}
				outcome := o.processFile(ctx, item.Info, opts, downloadOpts, pool, control)
				telemetry.SyncFilesTotal.WithLabelValues(outcome.String()).Inc()

				if outcome == outcomeSuccess {
					n := processedCount.Add(1)
					if n%progressLogInterval == 0 {
						o.logger.Info("sync progress", "processed", n)
					}
				}

				if outcome == outcomeSuccess || outcome == outcomeFailed {
					c := checkpointCount.Add(1)
					if c%checkpointInterval == 0 {
						o.checkpoint(ctx, historyID)
					}
				}
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < opts.Concurrency; i++ {
		<-done
	}
}

func (o *Orchestrator) checkpoint(ctx context.Context, historyID uuid.UUID) {
	var snap Metrics
	o.state.mutateMetrics(func(m *Metrics) { snap = *m })
	if err := o.store.RecordProgress(ctx, historyID, snap, snap.Errors); err != nil {
		o.logger.Error("recording sync progress", "error", err)
	}
	o.mirrorStatus(ctx, historyID, &snap, true)
}

func (o *Orchestrator) finish(ctx context.Context, historyID uuid.UUID, status string, runErr error) {
	now := time.Now().UTC()
	if runErr != nil {
		status = "failed"
	}

	var snap Metrics
	o.state.mutateMetrics(func(m *Metrics) {
		m.CompletedAt = &now
		m.DurationMs = now.Sub(m.StartedAt).Milliseconds()
		snap = *m
	})

	if err := o.store.FinishSyncHistory(ctx, historyID, status, snap, snap.Errors); err != nil {
		o.logger.Error("finishing sync history", "error", err)
	}
}

func (o *Orchestrator) logSummary(metrics *Metrics, status string) {
	o.logger.Info("cruise sync finished",
		"status", status,
		"filesProcessed", metrics.FilesProcessed,
		"filesFailed", metrics.FilesFailed,
		"sailingsCreated", metrics.SailingsCreated,
		"sailingsUpdated", metrics.SailingsUpdated,
		"stopsInserted", metrics.StopsInserted,
		"pricesInserted", metrics.PricesInserted,
		"durationMs", metrics.DurationMs,
	)
	o.logger.Info("---- cruise sync summary ----")
}

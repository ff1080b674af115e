// Package app wires together configuration, infrastructure clients, and the
// domain packages (refcache, ftp, catalog, upsert, delta, importer,
// maintenance, control) into a running process (spec.md §2, §4.5, §4.6).
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/cruiseops/cruisesync/internal/config"
	"github.com/cruiseops/cruisesync/internal/httpserver"
	"github.com/cruiseops/cruisesync/internal/platform"
	"github.com/cruiseops/cruisesync/internal/telemetry"
	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/control"
	"github.com/cruiseops/cruisesync/pkg/delta"
	"github.com/cruiseops/cruisesync/pkg/ftp"
	"github.com/cruiseops/cruisesync/pkg/importer"
	"github.com/cruiseops/cruisesync/pkg/maintenance"
	"github.com/cruiseops/cruisesync/pkg/refcache"
)

// Run is the main application entry point. It reads config, connects to
// infrastructure, and starts the appropriate mode (api or worker).
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting cruisesync",
		"mode", cfg.Mode,
		"listen", cfg.ListenAddr(),
	)

	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running catalog migrations: %w", err)
	}
	logger.Info("catalog migrations applied")

	metricsReg := telemetry.NewMetricsRegistry(telemetry.All()...)

	store := catalog.NewStore(db)
	cache := refcache.New()
	tracker := delta.New(store, logger)
	ftpConfig := ftp.Config{
		Host:     cfg.FTPHost,
		User:     cfg.FTPUser,
		Password: cfg.FTPPassword,
		Secure:   cfg.FTPSecure,
		Verbose:  cfg.FTPVerbose,
	}

	loc, err := time.LoadLocation(cfg.CruiseSyncTimezone)
	if err != nil {
		return fmt.Errorf("loading cruise sync timezone %q: %w", cfg.CruiseSyncTimezone, err)
	}

	orch := importer.New(db, store, cache, tracker, logger, ftpConfig, rdb, cfg, cfg.BypassSyncEnvironmentGuard)
	scheduler := importer.NewScheduler(orch, loc, cfg.EnableScheduledCruiseSync)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting cruise sync scheduler: %w", err)
	}
	defer scheduler.Stop()

	notifier := maintenance.NewNotifier(cfg.SlackBotToken, cfg.SlackReportChannel, logger)
	jobs := maintenance.New(store, logger, notifier)
	maintenanceScheduler := maintenance.NewScheduler(jobs, loc)
	if err := maintenanceScheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting maintenance scheduler: %w", err)
	}
	defer maintenanceScheduler.Stop()

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, db, rdb, metricsReg, orch, jobs, store, cache, ftpConfig)
	case "worker":
		return runWorker(ctx, logger, scheduler, maintenanceScheduler)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry, orch *importer.Orchestrator, jobs *maintenance.Jobs, store *catalog.Store, cache *refcache.Cache, ftpConfig ftp.Config) error {
	srv := httpserver.NewServer(cfg, logger, db, rdb, metricsReg)

	handler := control.New(orch, jobs, store, cache, ftpConfig, rdb, logger)
	handler.Routes(srv.APIRouter)

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runWorker keeps the scheduled cron jobs (cruise sync + maintenance)
// running until the context is cancelled; it exposes no HTTP surface.
func runWorker(ctx context.Context, logger *slog.Logger, scheduler *importer.Scheduler, maintenanceScheduler *maintenance.Scheduler) error {
	logger.Info("worker started")
	<-ctx.Done()
	logger.Info("worker shutting down")
	return nil
}

// Package control implements the HTTP control surface (C7): the
// administrator-facing endpoints that trigger and observe the import
// pipeline and the maintenance jobs (spec.md §6.3).
package control

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/cruiseops/cruisesync/pkg/catalog"
	"github.com/cruiseops/cruisesync/pkg/ftp"
	"github.com/cruiseops/cruisesync/pkg/importer"
	"github.com/cruiseops/cruisesync/pkg/maintenance"
	"github.com/cruiseops/cruisesync/pkg/refcache"
)

// Handler wires the import orchestrator and maintenance jobs to HTTP.
type Handler struct {
	orch      *importer.Orchestrator
	jobs      *maintenance.Jobs
	store     *catalog.Store
	cache     *refcache.Cache
	ftpConfig ftp.Config
	rdb       *redis.Client // optional; nil disables cross-replica cancel/status
	logger    *slog.Logger
}

// New creates a Handler.
func New(orch *importer.Orchestrator, jobs *maintenance.Jobs, store *catalog.Store, cache *refcache.Cache, ftpConfig ftp.Config, rdb *redis.Client, logger *slog.Logger) *Handler {
	return &Handler{orch: orch, jobs: jobs, store: store, cache: cache, ftpConfig: ftpConfig, rdb: rdb, logger: logger}
}

// Routes registers every endpoint from §6.3 onto r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sync", h.handleSync)
	r.Post("/sync/dry-run", h.handleSyncDryRun)
	r.Get("/sync/status", h.handleSyncStatus)
	r.Get("/sync/history", h.handleSyncHistory)
	r.Post("/sync/cancel", h.handleSyncCancel)
	r.Get("/test-connection", h.handleTestConnection)
	r.Get("/available-years", h.handleAvailableYears)
	r.Post("/purge", h.handlePurge)
	r.Get("/storage-stats", h.handleStorageStats)
	r.Get("/cache-stats", h.handleCacheStats)
	r.Post("/cache/clear", h.handleCacheClear)
	r.Get("/cleanup/preview", h.handleCleanupPreview)
	r.Post("/cleanup", h.handleCleanup)
	r.Get("/stubs-report", h.handleStubsReport)
	r.Get("/coverage-stats", h.handleCoverageStats)
}

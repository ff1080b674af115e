package control

import (
	"errors"
	"net/http"

	"github.com/cruiseops/cruisesync/internal/httpserver"
	"github.com/cruiseops/cruisesync/pkg/importer"
)

// syncRequest mirrors FtpSyncOptions (§6.3). Pointer bool fields distinguish
// "absent" from "explicitly false" so the per-field defaults below apply
// only when the client omits the field.
type syncRequest struct {
	Year              int    `json:"year"`
	Month             int    `json:"month"`
	LineID            string `json:"lineId"`
	ShipID            string `json:"shipId"`
	MaxFiles          int    `json:"maxFiles"`
	SkipOversized     *bool  `json:"skipOversized"`
	MaxFileSizeBytes  int64  `json:"maxFileSizeBytes"`
	FileTimeoutMs     int    `json:"fileTimeoutMs"`
	RetryAttempts     int    `json:"retryAttempts"`
	RetryDelayMs      int    `json:"retryDelayMs"`
	IncludeHistorical bool   `json:"includeHistorical"`
	Concurrency       int    `json:"concurrency"`
	FTPPoolSize       int    `json:"ftpPoolSize"`
	DeltaSync         *bool  `json:"deltaSync"`
	ForceFullSync     bool   `json:"forceFullSync"`
}

// toOptions converts the wire request to importer.SyncOptions, applying the
// skipOversized/deltaSync true defaults only when the client left them unset
// (§6.3).
func (req syncRequest) toOptions() importer.SyncOptions {
	opts := importer.SyncOptions{
		Year:              req.Year,
		Month:             req.Month,
		LineID:            req.LineID,
		ShipID:            req.ShipID,
		MaxFiles:          req.MaxFiles,
		SkipOversized:     true,
		MaxFileSizeBytes:  req.MaxFileSizeBytes,
		FileTimeoutMs:     req.FileTimeoutMs,
		RetryAttempts:     req.RetryAttempts,
		RetryDelayMs:      req.RetryDelayMs,
		IncludeHistorical: req.IncludeHistorical,
		Concurrency:       req.Concurrency,
		FTPPoolSize:       req.FTPPoolSize,
		DeltaSync:         true,
		ForceFullSync:     req.ForceFullSync,
	}
	if req.SkipOversized != nil {
		opts.SkipOversized = *req.SkipOversized
	}
	if req.DeltaSync != nil {
		opts.DeltaSync = *req.DeltaSync
	}
	return opts
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, false)
}

func (h *Handler) handleSyncDryRun(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, true)
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, dryRun bool) {
	var req syncRequest
	if r.ContentLength != 0 {
		if !httpserver.DecodeAndValidate(w, r, &req) {
			return
		}
	}

	opts := req.toOptions()
	if dryRun {
		opts.DryRun = true
	}

	metrics, err := h.orch.Run(r.Context(), opts)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrBusy):
			httpserver.RespondError(w, http.StatusConflict, "sync_in_progress", err.Error())
		case errors.Is(err, importer.ErrEnvironmentGuard):
			httpserver.RespondError(w, http.StatusForbidden, "environment_guard", err.Error())
		default:
			httpserver.RespondError(w, http.StatusInternalServerError, "sync_failed", err.Error())
		}
		return
	}

	httpserver.Respond(w, http.StatusOK, metrics)
}

func (h *Handler) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status := h.orch.Status()
	if !status.InProgress && h.rdb != nil {
		if mirrored, ok := importer.FetchMirroredStatus(r.Context(), h.rdb); ok {
			status = mirrored
		}
	}
	httpserver.Respond(w, http.StatusOK, status)
}

func (h *Handler) handleSyncHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	history, err := h.store.ListSyncHistory(r.Context(), limit)
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, history)
}

func (h *Handler) handleSyncCancel(w http.ResponseWriter, r *http.Request) {
	success := h.orch.Cancel()
	if h.rdb != nil {
		if err := importer.PublishCancel(r.Context(), h.rdb); err != nil {
			h.logger.Error("publishing cross-replica cancel", "error", err)
		} else {
			success = true
		}
	}

	message := "no sync is currently running"
	if success {
		message = "cancellation requested"
	}
	httpserver.Respond(w, http.StatusOK, map[string]any{"success": success, "message": message})
}

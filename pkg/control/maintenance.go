package control

import (
	"net/http"

	"github.com/cruiseops/cruisesync/internal/httpserver"
)

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobs.Purge(r.Context())
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "purge_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, result)
}

func (h *Handler) handleStorageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.StorageStats(r.Context())
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "storage_stats_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, stats)
}

func (h *Handler) handleCleanupPreview(w http.ResponseWriter, r *http.Request) {
	daysBuffer := 0
	if v := r.URL.Query().Get("daysBuffer"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			daysBuffer = n
		}
	}

	result, err := h.jobs.CleanupPreview(r.Context(), daysBuffer)
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "cleanup_preview_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, result)
}

type cleanupRequest struct {
	DaysBuffer int `json:"daysBuffer"`
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if r.ContentLength != 0 {
		if !httpserver.DecodeAndValidate(w, r, &req) {
			return
		}
	}

	result, err := h.jobs.Cleanup(r.Context(), req.DaysBuffer)
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "cleanup_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, result)
}

func (h *Handler) handleStubsReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.jobs.StubReport(r.Context())
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "stubs_report_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, report)
}

func (h *Handler) handleCoverageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.CoverageStats(r.Context())
	if err != nil {
		httpserver.RespondError(w, http.StatusInternalServerError, "coverage_stats_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, stats)
}

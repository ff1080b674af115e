package control

import (
	"net/http"

	"github.com/cruiseops/cruisesync/internal/httpserver"
	"github.com/cruiseops/cruisesync/pkg/ftp"
	"github.com/cruiseops/cruisesync/pkg/importer"
)

// handleTestConnection probes the FTP feed with a fresh connection, unless a
// sync is currently running, in which case it reports skipped=true without
// touching the feed (§6.3).
func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	status := h.orch.Status()
	if !status.InProgress && h.rdb != nil {
		if mirrored, ok := importer.FetchMirroredStatus(r.Context(), h.rdb); ok {
			status = mirrored
		}
	}
	if status.InProgress {
		httpserver.Respond(w, http.StatusOK, map[string]any{"success": true, "skipped": true})
		return
	}

	control := ftp.NewControlClient(h.ftpConfig, h.logger)
	defer func() { _ = control.Disconnect() }()

	info, err := control.TestConnection()
	if err != nil {
		httpserver.Respond(w, http.StatusOK, map[string]any{"success": false, "info": err.Error()})
		return
	}
	httpserver.Respond(w, http.StatusOK, map[string]any{"success": true, "info": info})
}

// handleAvailableYears lists the year directories present at the feed root,
// using a fresh connection (§6.3).
func (h *Handler) handleAvailableYears(w http.ResponseWriter, r *http.Request) {
	control := ftp.NewControlClient(h.ftpConfig, h.logger)
	if err := control.ForceReconnect(); err != nil {
		httpserver.RespondError(w, http.StatusBadGateway, "ftp_unreachable", err.Error())
		return
	}
	defer func() { _ = control.Disconnect() }()

	years, err := ftp.NewLister(control).AvailableYears()
	if err != nil {
		httpserver.RespondError(w, http.StatusBadGateway, "ftp_list_failed", err.Error())
		return
	}
	httpserver.Respond(w, http.StatusOK, map[string]any{"years": years})
}

package control

import (
	"net/http"

	"github.com/cruiseops/cruisesync/internal/httpserver"
)

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	httpserver.Respond(w, http.StatusOK, h.cache.Stats())
}

func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	httpserver.Respond(w, http.StatusOK, map[string]bool{"cleared": true})
}

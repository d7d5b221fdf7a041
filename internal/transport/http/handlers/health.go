package handlers

import (
	"net/http"

	"github.com/oggyb/vibecheck/internal/logger"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Live handles GET /livez.
func (h *Handlers) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready handles GET /healthz: the store (and Redis when wired) must answer.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logger.From(r.Context()).Warn("readiness check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

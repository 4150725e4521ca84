// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	startTime time.Time
	source    StopSource
}

func NewHealthHandler(source StopSource) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), source: source}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "OK"
	if h.source.Err != nil {
		status = "DEGRADED"
	}

	body := map[string]any{
		"status":       status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      "1.0.0",
		"uptime":       time.Since(h.startTime).String(),
		"stops_loaded": h.source.Table.Len(),
	}
	if loadedAt := h.source.Table.LoadedAt(); !loadedAt.IsZero() {
		body["stops_loaded_at"] = loadedAt.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, body)
}

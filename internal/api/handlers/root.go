package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "textmystop",
		"description": "Find nearby transit stops and text their stop code for next vehicle times",
		"version":     "1.0.0",
		"endpoints": map[string]string{
			"GET /":                       "API information",
			"GET /health":                 "Health check",
			"GET /stops":                  "Search stops (q, lat, lng, postal, radius, tiers, limit, group)",
			"GET /stops/{id}":             "Single stop",
			"GET /stops/{id}/sms":         "Redirect to the SMS composer for a stop",
			"GET /stops/{id}/arrivals":    "Real-time arrivals for a stop",
			"GET /stops/{id}/alerts":      "Service alerts for a stop",
			"GET /location/info":          "Coverage counts",
			"GET /location/postal":        "All postal areas",
			"GET /location/postal/{code}": "Postal area centroid",
			"GET /location/nearest":       "Nearest postal area to lat/lng",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the root endpoint (/) for available routes",
	})
}

package handlers

import (
	"net/http"

	"github.com/randytsao24/textmystop/internal/location"
)

type LocationHandler struct {
	postal *location.PostalCodeService
	source StopSource
}

func NewLocationHandler(postal *location.PostalCodeService, source StopSource) *LocationHandler {
	return &LocationHandler{
		postal: postal,
		source: source,
	}
}

// GetPostalCode returns the centroid of a postal area. Full postal codes
// are reduced to their first three characters.
func (h *LocationHandler) GetPostalCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if len(location.NormalizePostalCode(code)) != 3 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid postal code format",
			"message": "Postal code must start with a three character area such as M5V",
		})
		return
	}

	pc, found := h.postal.Get(code)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "Postal code not found",
			"message": "Postal code " + code + " is not in the postal area table",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"postal":   location.NormalizePostalCode(code),
		"location": pc,
	})
}

// ListPostalCodes returns every known postal area sorted by code
func (h *LocationHandler) ListPostalCodes(w http.ResponseWriter, r *http.Request) {
	all := h.postal.GetAll()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"postal_areas": all,
		"count":        len(all),
	})
}

// GetNearest returns the postal area closest to lat/lng
func (h *LocationHandler) GetNearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coord, err := location.ParseCoordinate(q.Get("lat"), q.Get("lng"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid location",
			"message": err.Error(),
		})
		return
	}

	pc, found := h.postal.FindNearest(coord.Latitude, coord.Longitude)
	if !found {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Postal areas unavailable",
			"message": "No postal area data is loaded",
		})
		return
	}

	distance := location.Haversine(coord.Latitude, coord.Longitude, pc.Lat, pc.Lng)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"location":        pc,
		"distance_meters": int(distance),
	})
}

// GetLocationInfo returns service info
func (h *LocationHandler) GetLocationInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"service":     "Toronto Transit Stop Lookup",
		"description": "Find nearby stops by position or postal code and text the stop code for arrival times",
		"coverage": map[string]any{
			"postal_areas": h.postal.Count(),
			"stops":        h.source.Table.Len(),
			"directions":   h.source.Table.Directions(),
		},
	})
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/models"
	"github.com/randytsao24/textmystop/internal/render"
	"github.com/randytsao24/textmystop/internal/viewmodel"
)

const (
	maxRadius            = 50000 // meters
	maxLimit             = 500
	defaultArrivalsLimit = 5
	maxArrivalsLimit     = 20
)

type StopsHandler struct {
	source    StopSource
	postal    *location.PostalCodeService
	arrivals  ArrivalProvider
	alerts    AlertProvider
	opts      viewmodel.Options
	recipient string
}

func NewStopsHandler(
	source StopSource,
	postal *location.PostalCodeService,
	arrivals ArrivalProvider,
	alerts AlertProvider,
	opts viewmodel.Options,
	recipient string,
) *StopsHandler {
	return &StopsHandler{
		source:    source,
		postal:    postal,
		arrivals:  arrivals,
		alerts:    alerts,
		opts:      opts,
		recipient: recipient,
	}
}

// Search returns the stops matching q, nearest first when a position is
// given through lat/lng or postal
func (h *StopsHandler) Search(w http.ResponseWriter, r *http.Request) {
	locator, err := locatorFor(r, h.postal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid location",
			"message": err.Error(),
		})
		return
	}

	opts, err := h.optionsFor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid parameter",
			"message": err.Error(),
		})
		return
	}

	origin, locationErr := resolveOrigin(r, locator)
	vm := viewmodel.Build(h.source.Table.Records(), r.URL.Query().Get("q"), origin, opts)

	body := map[string]any{
		"success": true,
		"results": render.Cards(vm, h.recipient),
		"metadata": map[string]any{
			"stops_found":  len(vm.Stops),
			"stops_total":  h.source.Table.Len(),
			"source":       h.source.Table.Source(),
			"skipped_rows": h.source.Table.Skipped(),

			"invalid_coordinates": h.source.Table.InvalidCoordinates(),
		},
	}
	if locationErr != nil {
		body["location_error"] = locationErr.Error()
	}
	if h.source.Err != nil {
		body["source_error"] = h.source.Err.Error()
	}

	writeJSON(w, http.StatusOK, body)
}

// GetStop returns one stop, with its distance when a position is given
func (h *StopsHandler) GetStop(w http.ResponseWriter, r *http.Request) {
	stop, ok := h.lookup(w, r)
	if !ok {
		return
	}

	locator, err := locatorFor(r, h.postal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid location",
			"message": err.Error(),
		})
		return
	}
	origin, _ := resolveOrigin(r, locator)
	ranked := location.RankByProximity([]models.StopRecord{stop}, origin)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stop":    render.NewCard(ranked[0], h.recipient),
	})
}

// SMS redirects to the messaging composer pre-filled with the stop code
func (h *StopsHandler) SMS(w http.ResponseWriter, r *http.Request) {
	stop, ok := h.lookup(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, render.SMSLink(h.recipient, stop.Code), http.StatusFound)
}

// GetArrivals returns real-time arrivals at a stop
func (h *StopsHandler) GetArrivals(w http.ResponseWriter, r *http.Request) {
	if h.arrivals == nil || !h.arrivals.HasFeed() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Arrivals unavailable",
			"message": "TRIP_UPDATES_URL not configured",
		})
		return
	}

	stop, ok := h.lookup(w, r)
	if !ok {
		return
	}

	limit := parseIntParam(r, "limit", defaultArrivalsLimit, 1, maxArrivalsLimit)
	arrivals, err := h.arrivals.GetArrivals(r.Context(), stop.ID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to fetch arrivals",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"stop_id":   stop.ID,
		"stop_code": stop.Code,
		"arrivals":  arrivals,
		"count":     len(arrivals),
	})
}

// GetAlerts returns active service alerts for a stop and its routes
func (h *StopsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil || !h.alerts.HasFeed() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":   "Alerts unavailable",
			"message": "SERVICE_ALERTS_URL not configured",
		})
		return
	}

	stop, ok := h.lookup(w, r)
	if !ok {
		return
	}

	routes := routesOf(stop)
	alerts, err := h.alerts.GetAlertsForStop(r.Context(), stop.ID, routes)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to fetch service alerts",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stop_id": stop.ID,
		"routes":  routes,
		"alerts":  alerts,
		"count":   len(alerts),
	})
}

func (h *StopsHandler) lookup(w http.ResponseWriter, r *http.Request) (models.StopRecord, bool) {
	id := r.PathValue("id")
	stop, found := h.source.Table.Get(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "Stop not found",
			"message": "Stop " + id + " is not in the stop table",
		})
		return models.StopRecord{}, false
	}
	return stop, true
}

func (h *StopsHandler) optionsFor(r *http.Request) (viewmodel.Options, error) {
	opts := h.opts
	q := r.URL.Query()

	if radius := parseIntParam(r, "radius", 0, 0, maxRadius); radius > 0 {
		opts.RadiusMeters = float64(radius)
		opts.RadiusTiers = nil
	}
	if tiers := q.Get("tiers"); tiers != "" {
		parsed, err := viewmodel.ParseRadiusTiers(tiers)
		if err != nil {
			return opts, err
		}
		opts.RadiusTiers = parsed
	}

	opts.Limit = parseIntParam(r, "limit", opts.Limit, 0, maxLimit)

	switch q.Get("group") {
	case "direction":
		opts.GroupByDirection = true
	case "none":
		opts.GroupByDirection = false
	}
	return opts, nil
}

// locatorFor picks the position source named by the request: explicit
// coordinates, a postal code, or none
func locatorFor(r *http.Request, postal *location.PostalCodeService) (location.Locator, error) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")

	switch {
	case latStr != "" || lngStr != "":
		if latStr == "" || lngStr == "" {
			return nil, errors.New("lat and lng query parameters must be given together")
		}
		coord, err := location.ParseCoordinate(latStr, lngStr)
		if err != nil {
			return nil, err
		}
		return location.StaticLocator{Coordinate: coord}, nil
	case q.Get("postal") != "":
		return location.PostalLocator{Codes: postal, Code: q.Get("postal")}, nil
	default:
		return location.UnavailableLocator{}, nil
	}
}

// resolveOrigin returns an invalid coordinate when the position cannot be
// resolved; the error is only reported when the caller asked for one
func resolveOrigin(r *http.Request, locator location.Locator) (models.Coordinate, error) {
	origin, err := locator.Locate(r.Context())
	if err == nil {
		return origin, nil
	}
	if _, none := locator.(location.UnavailableLocator); none {
		return models.Coordinate{}, nil
	}
	slog.Warn("location unavailable, using source order", "error", err)
	return models.Coordinate{}, err
}

func routesOf(stop models.StopRecord) []string {
	var routes []string
	for _, part := range strings.Split(stop.IntersectionOrRoutes, "|") {
		if part = strings.TrimSpace(part); part != "" {
			routes = append(routes, part)
		}
	}
	return routes
}

package api

import (
	"net/http"
	"time"

	"github.com/randytsao24/textmystop/internal/api/handlers"
	"github.com/randytsao24/textmystop/internal/config"
	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/viewmodel"
)

// requestTimeout bounds every request, including upstream feed fetches
const requestTimeout = 15 * time.Second

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(
	cfg *config.Config,
	source handlers.StopSource,
	postal *location.PostalCodeService,
	arrivals handlers.ArrivalProvider,
	alerts handlers.AlertProvider,
) http.Handler {
	mux := http.NewServeMux()

	opts := viewmodel.Options{
		GroupByDirection: cfg.GroupByDirection,
		RadiusTiers:      cfg.RadiusTiers,
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(source)
	rootHandler := handlers.NewRootHandler()
	locationHandler := handlers.NewLocationHandler(postal, source)
	stopsHandler := handlers.NewStopsHandler(source, postal, arrivals, alerts, opts, cfg.SMSRecipient)

	// Core routes
	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Stop routes
	mux.HandleFunc("GET /stops", stopsHandler.Search)
	mux.HandleFunc("GET /stops/{id}", stopsHandler.GetStop)
	mux.HandleFunc("GET /stops/{id}/sms", stopsHandler.SMS)
	mux.HandleFunc("GET /stops/{id}/arrivals", stopsHandler.GetArrivals)
	mux.HandleFunc("GET /stops/{id}/alerts", stopsHandler.GetAlerts)

	// Location routes
	mux.HandleFunc("GET /location/info", locationHandler.GetLocationInfo)
	mux.HandleFunc("GET /location/postal", locationHandler.ListPostalCodes)
	mux.HandleFunc("GET /location/postal/{code}", locationHandler.GetPostalCode)
	mux.HandleFunc("GET /location/nearest", locationHandler.GetNearest)

	mux.HandleFunc("/", rootHandler.NotFound)

	// Apply middleware stack
	handler := Chain(mux,
		Recovery,
		RequestID,
		Logging,
		CORS,
		Timeout(requestTimeout),
	)

	return handler
}

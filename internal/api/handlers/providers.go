package handlers

import (
	"context"

	"github.com/randytsao24/textmystop/internal/stops"
	"github.com/randytsao24/textmystop/internal/transit"
)

// ArrivalProvider abstracts the real-time arrivals source for testability.
type ArrivalProvider interface {
	HasFeed() bool
	GetArrivals(ctx context.Context, stopID string, limit int) ([]transit.Arrival, error)
}

// AlertProvider abstracts the service alerts data source.
type AlertProvider interface {
	HasFeed() bool
	GetAlertsForStop(ctx context.Context, stopID string, routes []string) ([]transit.ServiceAlert, error)
}

// StopSource is the outcome of loading the stop table at startup. When
// Err is set Table is nil and every search answers with an empty view.
type StopSource struct {
	Table *stops.Table
	Err   error
}

// Package main is the entry point for the textmystop server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randytsao24/textmystop/internal/api"
	"github.com/randytsao24/textmystop/internal/api/handlers"
	"github.com/randytsao24/textmystop/internal/config"
	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/logging"
	"github.com/randytsao24/textmystop/internal/stops"
	"github.com/randytsao24/textmystop/internal/transit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logging.Init(os.Stderr, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: cfg.HTTPTimeout}

	// A failed load still serves: searches answer with an empty view
	var source handlers.StopSource
	source.Table, source.Err = stops.Load(ctx, cfg.StopsSource, client, cfg.Columns)
	if source.Err != nil {
		slog.Error("stop table unavailable", "source", cfg.StopsSource, "error", source.Err)
	}

	postal := location.NewPostalCodeService()
	if cfg.PostalCodesFile != "" {
		if err := postal.Load(cfg.PostalCodesFile); err != nil {
			slog.Warn("postal codes unavailable", "file", cfg.PostalCodesFile, "error", err)
		} else {
			slog.Info("postal codes loaded", "count", postal.Count())
		}
	}

	arrivals := transit.NewArrivalService(cfg.TripUpdatesURL, cfg.HTTPTimeout, cfg.CacheTTL)
	defer arrivals.Close()
	alerts := transit.NewAlertService(cfg.ServiceAlertsURL, cfg.HTTPTimeout, cfg.CacheTTL)
	defer alerts.Close()

	if !arrivals.HasFeed() {
		slog.Info("TRIP_UPDATES_URL not set, arrivals disabled")
	}
	if !alerts.HasFeed() {
		slog.Info("SERVICE_ALERTS_URL not set, alerts disabled")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(cfg, source, postal, arrivals, alerts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("textmystop server starting",
		"port", cfg.Port,
		"env", cfg.Env,
		"url", "http://localhost:"+cfg.Port,
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

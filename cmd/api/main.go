// Command api runs the AirWatch backend: the HTTP API plus the periodic
// alert sweep that polls air-quality providers and pushes notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"airwatch/internal/alerts"
	"airwatch/internal/api/handlers"
	"airwatch/internal/aqi"
	"airwatch/internal/config"
	"airwatch/internal/core"
	"airwatch/internal/db"
	"airwatch/internal/external"
	"airwatch/internal/scheduler"
	"airwatch/internal/types"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting",
		"service", cfg.Service,
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	alertRepo := db.NewAlertRepo(pool, logger)
	userRepo := db.NewUserRepo(pool)
	locationRepo := db.NewLocationRepo(pool)

	// One outbound budget shared by both air-quality providers so a sweep
	// cannot hammer the upstreams regardless of which provider answers.
	providerLimiter := rate.NewLimiter(rate.Limit(cfg.Provider.RateLimit), cfg.Provider.RateBurst)

	waqiBase := external.NewBaseClient(
		&http.Client{Timeout: cfg.Provider.Timeout},
		"waqi",
		external.DefaultRetryPolicy(),
		cfg.Provider.UserAgent,
		external.WithRateLimiter(providerLimiter),
	)
	openaqBase := external.NewBaseClient(
		&http.Client{Timeout: cfg.Provider.Timeout},
		"openaq",
		external.DefaultRetryPolicy(),
		cfg.Provider.UserAgent,
		external.WithRateLimiter(providerLimiter),
	)
	geocodeBase := external.NewBaseClient(
		&http.Client{Timeout: cfg.Geocode.Timeout},
		"geocode",
		external.DefaultRetryPolicy(),
		cfg.Provider.UserAgent,
	)
	pushBase := external.NewBaseClient(
		&http.Client{Timeout: cfg.Push.Timeout},
		"fcm",
		external.DefaultRetryPolicy(),
		cfg.Provider.UserAgent,
	)

	waqiClient := external.NewWAQIClient(waqiBase, cfg.Provider.WAQIBaseURL, cfg.Provider.WAQIToken)
	openaqClient := external.NewOpenAQClient(openaqBase, cfg.Provider.OpenAQBaseURL)
	geocodeClient := external.NewGeocodeClient(geocodeBase, cfg.Geocode.BaseURL)
	fcmClient := external.NewFCMClient(pushBase, cfg.Push.FCMBaseURL, cfg.Push.FCMServerKey)

	// Without a WAQI token every reading comes from the secondary provider.
	var primary aqi.Provider
	if cfg.Provider.WAQIToken.Unmask() != "" {
		primary = waqiClient
	} else {
		logger.Warn("no WAQI token configured; using secondary provider only")
	}
	gateway := aqi.NewGateway(primary, openaqClient, logger)

	evaluator := alerts.NewEvaluator(fcmClient, alertRepo, cfg.Sweep.Cooldown, types.RealClock{}, logger)
	checker := alerts.NewChecker(gateway, evaluator)

	sweeper := scheduler.NewSweeper(alertRepo, checker, cfg.Sweep.Interval, cfg.Sweep.Concurrency, logger)
	sweeper.Start()
	defer sweeper.Stop()

	server, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	server.DB = pool

	alertsHandler := handlers.NewAlertsHandler(alertRepo, checker, logger)
	usersHandler := handlers.NewUsersHandler(userRepo)
	locationsHandler := handlers.NewLocationsHandler(locationRepo, userRepo, geocodeClient, waqiClient)
	airQualityHandler := handlers.NewAirQualityHandler(geocodeClient, waqiClient)

	server.V1RouteRegistrars = []core.RouteRegistrar{
		func(r chi.Router) { alertsHandler.Routes(r) },
		func(r chi.Router) { usersHandler.Routes(r) },
		func(r chi.Router) { locationsHandler.Routes(r) },
		func(r chi.Router) { airQualityHandler.Routes(r) },
	}
	server.MountRoutes()

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown incomplete", "error", err)
	}

	sweeper.Stop()
	logger.Info("shutdown complete")
	return nil
}

// newLogger builds the process-wide structured JSON logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		"service", cfg.Service,
		"env", cfg.Environment,
	)
}

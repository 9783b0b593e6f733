package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/AleNovelli/drone-flightplans/internal/api"
	"github.com/AleNovelli/drone-flightplans/internal/auth"
	"github.com/AleNovelli/drone-flightplans/internal/geofence"
	"github.com/AleNovelli/drone-flightplans/internal/metrics"
	"github.com/AleNovelli/drone-flightplans/internal/observe"
	"github.com/AleNovelli/drone-flightplans/internal/site"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("FLIGHTPLANS_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	sitePath := os.Getenv("FLIGHTPLANS_SITE_CONFIG")
	if sitePath == "" {
		logger.Error("FLIGHTPLANS_SITE_CONFIG is required")
		os.Exit(1)
	}
	st, err := site.Load(sitePath, logger)
	if err != nil {
		logger.Error("loading site configuration", "path", sitePath, "error", err)
		os.Exit(1)
	}
	// Without a configured origin, anchor at the telescope barycenter.
	if !st.Anchored() {
		if err := st.SetOrigin(nil); err != nil {
			logger.Error("anchoring site", "error", err)
			os.Exit(1)
		}
	}

	var geo *geofence.Data
	if path := os.Getenv("FLIGHTPLANS_GEOFENCE_CONFIG"); path != "" {
		geo, err = geofence.Load(path, logger)
		if err != nil {
			logger.Error("loading geofence configuration", "path", path, "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("no geofence configured, exports have no safety corridors or fences")
	}

	workers := loadObserveWorkers(logger)
	pool := observe.NewPool(workers, logger)
	metrics.SetObserveWorkers(pool.Workers())

	srv := api.NewServer(addr, logger, authCfg, st, pool, geo)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"telescopes", len(st.Telescopes()),
			"observe_workers", pool.Workers(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("FLIGHTPLANS_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("FLIGHTPLANS_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("FLIGHTPLANS_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("FLIGHTPLANS_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadObserveWorkers(logger *slog.Logger) int {
	workers := runtime.GOMAXPROCS(0)
	if v := os.Getenv("FLIGHTPLANS_OBSERVE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FLIGHTPLANS_OBSERVE_WORKERS value, using default", "value", v, "default", workers)
		} else {
			workers = n
		}
	}
	return workers
}

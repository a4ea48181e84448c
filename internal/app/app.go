package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/catalog"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/config"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/handler"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/middleware"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/obs"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/planner"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/planner/cache"
	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/ratelimit"
)

// Run initializes and runs the application.
func Run() error {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	// Initialize metrics
	metrics := obs.NewMetrics(logger)

	// Load the catalogs once; they are read-only for the process lifetime
	// and shared by all searches.
	loader := catalog.NewLoader(metrics, logger)
	cat, err := loader.LoadFiles(cfg.Catalog.FlightsPath, cfg.Catalog.HotelsPath)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		return err
	}

	// Initialize planner
	p := planner.New(logger, planner.WithMaxPairs(cfg.Search.MaxPairs))

	// Initialize cache
	searchCache := cache.New(cfg.CacheTTL())
	defer searchCache.Close()

	// Initialize rate limiter
	limiter := ratelimit.New(cfg.Search.RateLimitPerMinute, time.Minute)
	defer limiter.Close()

	// Initialize handler and routes
	h := handler.New(p, cat, searchCache, limiter, metrics, logger)

	router := chi.NewRouter()
	router.Use(middleware.Logging(logger))
	router.Get("/search", h.SearchHandler)
	router.Get("/destinations", h.DestinationsHandler)
	router.Get("/healthz", obs.HealthHandler(logger))
	router.Get("/metrics", metrics.MetricsHandler())

	// Configure server
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

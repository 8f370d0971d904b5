package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/VoidMesh/heightfield/internal/api"
	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/history"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/metrics"
	"github.com/VoidMesh/heightfield/internal/pipeline"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	logger := setupLogging(cfg.Logging)
	logger.Debug("Configuration loaded", "server_port", cfg.Server.Port, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	appLogger := logging.NewWrapper(logger)

	// Load the default preset
	preset, err := config.LoadGeneration(cfg.Generation.PresetPath)
	if err != nil {
		logger.Fatal("Failed to load generation preset", "error", err, "path", cfg.Generation.PresetPath)
	}
	preset.Limits = cfg.Generation.Limits().WithDefaults()
	if err := preset.Validate(); err != nil {
		logger.Fatal("Generation preset is invalid", "error", err, "fields", config.Fields(err))
	}
	logger.Debug("Generation preset loaded", "width", preset.Width, "length", preset.Length, "seed", preset.Seed)

	// Initialize history store
	var store *history.Store
	if cfg.Database.Path != "" {
		store, err = history.Open(cfg.Database, appLogger)
		if err != nil {
			logger.Fatal("Failed to initialize history store", "error", err)
		}
		defer store.Close()
	} else {
		logger.Info("History disabled, DB_PATH is empty")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	// Generation pipeline
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator := pipeline.NewGenerator(appLogger, recorder, cfg.Generation.Limits())
	generator.SetObserver(func(runID string, state pipeline.State) {
		logger.Debug("Run state changed", "run_id", runID, "state", state.String())
	})

	regen := pipeline.NewRegenerator(ctx, generator, appLogger, recorder, func(out pipeline.Outcome) {
		if out.Err != nil || store == nil {
			return
		}
		if err := store.Record(ctx, out.Result); err != nil {
			logger.Error("Failed to record preview run", "error", err, "run_id", out.Result.RunID)
		}
	})

	// Initialize API handlers
	var runs api.RunStore
	if store != nil {
		runs = store
	}
	handler := api.NewHandler(generator, regen, runs, preset, cfg.Server.RequestTimeout, appLogger)
	router := api.SetupRoutes(handler, api.RouteOptions{
		Recorder:      recorder,
		Gatherer:      registry,
		MaxConcurrent: cfg.Generation.MaxConcurrent,
	})
	logger.Debug("API routes configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting heightfield server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
		logger.Debug("Server stopped listening")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	} else {
		logger.Debug("Server shutdown completed gracefully")
	}

	// Stop the preview run in flight before the store closes.
	regen.Close()

	logger.Info("Server exited")
}

func setupLogging(cfg config.LoggingConfig) *log.Logger {
	logging.InitLogger()
	logger := logging.GetLogger()
	logging.SetLevel(logger, logging.ParseLevel(cfg.Level))

	switch {
	case cfg.Format == "pretty" || !cfg.Structured:
		logger.SetFormatter(log.TextFormatter)
	case cfg.Format == "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

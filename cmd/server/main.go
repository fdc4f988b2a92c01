package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airwatch/internal/config"
	"airwatch/internal/handlers"
	"airwatch/internal/repository"
	"airwatch/internal/services"
	"airwatch/pkg/logging"
	"airwatch/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("airwatch-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting AirWatch API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"data_file":   cfg.DataFile(),
		"cache":       cfg.Data.Cache,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("airwatch")

	// Initialize repository
	var repo repository.SeriesRepository = repository.NewFileRepository(cfg.Data.Sheet, logger, metricsCollector)
	if cfg.Data.Cache {
		cached, err := repository.NewCachedRepository(repo, logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to start dataset watcher", logging.Fields{}, err)
		}
		defer cached.Close()
		repo = cached
	}

	// Initialize services
	analysisService := services.NewAnalysisService(repo, cfg.CurrentConditions(), logger, metricsCollector)

	// Initialize handlers
	aqiHandler := handlers.NewAQIHandler(analysisService, handlers.Options{
		DataDir:     cfg.Data.Dir,
		DefaultFile: cfg.Data.File,
		ExportDir:   cfg.Data.ExportDir,
		AssetDir:    cfg.Data.AssetDir,
		Threshold:   cfg.Analysis.SeverityThreshold,
		Station:     cfg.StationLocation(),
		Logos:       cfg.Data.Logos,
	}, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()
	router.Use(handlers.RequestID, handlers.Instrument(metricsCollector))

	// Register routes
	handlers.RegisterDocsRoutes(router)
	aqiHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      ghandlers.RecoveryHandler()(ghandlers.LoggingHandler(os.Stderr, router)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

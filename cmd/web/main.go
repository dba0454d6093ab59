package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shoppulse/internal/config"
	"shoppulse/internal/dataset"
	"shoppulse/internal/services"
	transporthttp "shoppulse/internal/transport/http"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// A missing .env is not an error; env vars may come from anywhere
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, err := config.NewPaths(cfg.Data)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	loader := dataset.NewLoader(paths, logger)
	service := services.NewAnalyticsService(loader, logger, cfg.Analytics.LowConfidenceOrders)

	// Load eagerly so the first request is served from a warm snapshot.
	// A failed initial load keeps the server up; the readiness probe stays
	// negative until a reload succeeds.
	if err := service.Reload(ctx); err != nil {
		logger.Warn("Initial dataset load failed, serving unloaded",
			"error", err,
			"data_dir", paths.DataDir)
	}

	router := transporthttp.NewRouter(cfg, service, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			"addr", server.Addr,
			"rate_limit_enabled", cfg.Server.RateLimit.Enabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// Package main provides the entry point for the Figshare deposit connector HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixir/figshare-connector/internal/bootstrap"
	"github.com/helixir/figshare-connector/internal/config"
	"github.com/helixir/figshare-connector/internal/observability"
	httpserver "github.com/helixir/figshare-connector/internal/server/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := bootstrap.NewLogger(cfg.Logging, nil)
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("figshare-connector server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		metrics        *observability.Metrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		metricsHandler = promhttp.Handler()
	}

	// API routes require bearer tokens signed with the server secret.
	tokenAuth, err := httpserver.NewTokenAuth(cfg.Server.AuthSecret)
	if err != nil {
		return fmt.Errorf("%s_SERVER_AUTH_SECRET: %w", config.EnvPrefix, err)
	}

	repo, err := bootstrap.NewRepository(cfg, metrics, logger)
	if err != nil {
		return err
	}
	if cfg.Figshare.Token == "" {
		logger.Warn().Msg("no figshare token configured; PUT /api/v1/configuration before depositing")
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		UploadDir:       cfg.Upload.TempDir,
		MaxUploadBytes:  cfg.Upload.MaxSizeBytes,
		MetricsPath:     cfg.Metrics.Path,
	}
	httpSrv := httpserver.NewServer(httpCfg, repo, metricsHandler, logger, httpserver.AuthMiddleware(tokenAuth))

	// Channel to collect server errors.
	errCh := make(chan error, 1)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", httpCfg.Address).
		Str("figshare_base_url", cfg.Figshare.BaseURL).
		Msg("figshare-connector is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down figshare-connector")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("figshare-connector shutdown complete")
	return nil
}

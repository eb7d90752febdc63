// Package bootstrap wires configuration into a ready FigshareRepository.
// Both the HTTP server and the CLI start from here.
package bootstrap

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/archive"
	"github.com/helixir/figshare-connector/internal/config"
	"github.com/helixir/figshare-connector/internal/deposit"
	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
	"github.com/helixir/figshare-connector/internal/observability"
)

// ClientConfig converts the figshare configuration section into a client config.
// The token is left to the caller.
func ClientConfig(cfg config.FigshareConfig) figshare.Config {
	return figshare.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: cfg.UserAgent,
	}
}

// NewRepository builds a repository from cfg. The repository is configured
// with the account token when one is set, and seeded from the static
// reference data snapshots when both are set. metrics may be nil.
func NewRepository(cfg *config.Config, metrics *observability.Metrics, logger zerolog.Logger) (*deposit.FigshareRepository, error) {
	repo := deposit.NewFigshareRepository(nil, deposit.Options{
		Client:  ClientConfig(cfg.Figshare),
		Archive: archive.NewZipIterator(cfg.Upload.TempDir),
		Metrics: metrics,
		Logger:  logger,
	})

	if cfg.Figshare.Token != "" {
		if err := repo.Configure(domain.RepositoryConfig{Identifier: cfg.Figshare.Token}); err != nil {
			return nil, fmt.Errorf("configure figshare client: %w", err)
		}
	}

	if cfg.ReferenceData.HasStaticReferenceData() {
		err := repo.ReferenceData().LoadStaticFiles(cfg.ReferenceData.LicensesFile, cfg.ReferenceData.CategoriesFile)
		if err != nil {
			return nil, fmt.Errorf("load reference data: %w", err)
		}
	}

	return repo, nil
}

// NewLogger builds the process logger from the logging section. A non-nil w
// overrides the configured output.
func NewLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	return observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		AddSource:  cfg.AddSource,
		TimeFormat: cfg.TimeFormat,
		Writer:     w,
	})
}

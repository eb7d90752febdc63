// Package deposit implements depositing exports into Figshare.
//
// FigshareRepository is the connector the hosting application talks to. It
// maps submission metadata onto a Figshare article, creates the article,
// resolves a link to it, uploads the export and optionally publishes it.
// Every outcome is reported as a domain.OperationResult; remote failures are
// never returned as errors.
package deposit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/archive"
	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
	"github.com/helixir/figshare-connector/internal/observability"
	"github.com/helixir/figshare-connector/internal/refdata"
)

// Repository is the deposit side of a repository connector.
type Repository interface {
	// SubmitDeposit deposits file described by metadata.
	SubmitDeposit(ctx context.Context, depositor domain.Depositor, file string, metadata domain.SubmissionMetadata, cfg domain.RepositoryConfig) domain.OperationResult

	// TestConnection checks that the configured credentials work.
	TestConnection(ctx context.Context) domain.OperationResult

	// Subjects lists the subjects a deposit can be classified under.
	Subjects(ctx context.Context) ([]domain.Subject, error)

	// LicenseConfigInfo lists the licenses a deposit can carry.
	LicenseConfigInfo(ctx context.Context) (domain.LicenseConfigInfo, error)

	// Configurer returns the configuration side of the connector.
	Configurer() Configurer
}

// Configurer is the configuration side of a repository connector.
type Configurer interface {
	Configure(cfg domain.RepositoryConfig) error
}

// Options configures a FigshareRepository.
type Options struct {
	// Client is the template for clients built by Configure. Token and
	// BaseURL are taken from the RepositoryConfig.
	Client figshare.Config

	// Archive walks zip exports. Defaults to a ZipIterator in the system temp dir.
	Archive archive.Iterator

	// Metrics is optional.
	Metrics *observability.Metrics

	Logger zerolog.Logger
}

// FigshareRepository deposits exports into a Figshare account.
type FigshareRepository struct {
	mu  sync.RWMutex
	api figshare.API

	clientTemplate figshare.Config
	cache          *refdata.Cache
	archive        archive.Iterator
	metrics        *observability.Metrics
	logger         zerolog.Logger
}

// Ensure FigshareRepository implements both connector interfaces.
var (
	_ Repository = (*FigshareRepository)(nil)
	_ Configurer = (*FigshareRepository)(nil)
)

// NewFigshareRepository creates a repository using api for remote calls.
// api may be nil, in which case Configure must be called before any remote
// operation.
func NewFigshareRepository(api figshare.API, opts Options) *FigshareRepository {
	if opts.Archive == nil {
		opts.Archive = archive.NewZipIterator("")
	}
	logger := opts.Logger.With().Str("component", "figshare_repository").Logger()

	var source figshare.ReferenceSource
	if api != nil {
		source = api
	}

	return &FigshareRepository{
		api:            api,
		clientTemplate: opts.Client,
		cache:          refdata.New(source, logger),
		archive:        opts.Archive,
		metrics:        opts.Metrics,
		logger:         logger,
	}
}

// Configure builds a Figshare client from the access token in cfg.Identifier.
// A non-empty cfg.ServerURL overrides the API base URL.
func (r *FigshareRepository) Configure(cfg domain.RepositoryConfig) error {
	token := strings.TrimSpace(cfg.Identifier)
	if token == "" {
		return domain.NewValidationError("identifier", "access token is required")
	}

	clientCfg := r.clientTemplate
	clientCfg.Token = token
	if cfg.ServerURL != "" {
		clientCfg.BaseURL = cfg.ServerURL
	}

	client := figshare.New(clientCfg)
	if r.metrics != nil {
		client = client.WithObserver(r.metrics)
	}

	r.SetAPI(client)
	r.logger.Info().Str("base_url", clientCfg.BaseURL).Msg("configured figshare client")
	return nil
}

// Configurer returns r.
func (r *FigshareRepository) Configurer() Configurer {
	return r
}

// SetAPI replaces the remote client, for example with a preconfigured one.
func (r *FigshareRepository) SetAPI(api figshare.API) {
	r.mu.Lock()
	r.api = api
	r.mu.Unlock()
	r.cache.SetSource(api)
}

// ReferenceData returns the category and license cache.
func (r *FigshareRepository) ReferenceData() *refdata.Cache {
	return r.cache
}

// LoadStatic seeds categories and licenses from JSON snapshots.
func (r *FigshareRepository) LoadStatic(licensesJSON, categoriesJSON []byte) error {
	return r.cache.LoadStatic(licensesJSON, categoriesJSON)
}

// Subjects lists category titles sorted by name.
func (r *FigshareRepository) Subjects(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := r.cache.Subjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	return subjects, nil
}

// LicenseConfigInfo lists licenses sorted by name.
func (r *FigshareRepository) LicenseConfigInfo(ctx context.Context) (domain.LicenseConfigInfo, error) {
	info, err := r.cache.LicenseConfigInfo(ctx)
	if err != nil {
		return domain.LicenseConfigInfo{}, fmt.Errorf("listing licenses: %w", err)
	}
	return info, nil
}

// TestConnection performs an authenticated read of the account.
func (r *FigshareRepository) TestConnection(ctx context.Context) domain.OperationResult {
	api := r.currentAPI()
	if api == nil {
		r.metrics.RecordConnectionTest(observability.ConnectionError)
		return domain.NewFailureResult(msgTestFailedPrefix + domain.ErrNotConfigured.Error())
	}

	ok, err := api.Test(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("connection test failed")
		r.metrics.RecordConnectionTest(observability.ConnectionError)
		return domain.NewFailureResult(msgTestFailedPrefix + err.Error())
	}
	if !ok {
		r.metrics.RecordConnectionTest(observability.ConnectionRejected)
		return domain.NewFailureResult(msgTestRejected)
	}

	r.metrics.RecordConnectionTest(observability.ConnectionOK)
	return domain.NewSuccessResult(msgTestOK, "")
}

func (r *FigshareRepository) currentAPI() figshare.API {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.api
}

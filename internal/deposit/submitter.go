package deposit

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/archive"
	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
	"github.com/helixir/figshare-connector/internal/observability"
)

// ResourceFolderMarker marks archive entries that are embedded resources of
// the main export document. They are not uploaded individually.
const ResourceFolderMarker = "/resources/"

const (
	msgDepositSucceeded   = "Deposit succeeded."
	msgPublishSucceeded   = " Publishing succeeded."
	msgPublishFailedFmt   = " Publishing failed: %s"
	msgSubmitFailedPrefix = "Submission failed - "
	msgTestOK             = "Test connection OK!"
	msgTestRejected       = "Test connection failed - please check settings."
	msgTestFailedPrefix   = "Test connection failed - "
)

// SubmitDeposit deposits file into a new Figshare article.
//
// The article is created, a link to it is resolved, and the file is
// uploaded. Zip files are uploaded whole and then entry by entry, skipping
// entries under ResourceFolderMarker. When metadata.Publish is set the
// article is published; a publish failure is reported in the message of an
// otherwise successful result. Failures to create the article or upload
// files produce a failed result. An article created before an upload
// failure is left in place.
//
// If the repository has no client yet, it is configured from cfg.
func (r *FigshareRepository) SubmitDeposit(ctx context.Context, depositor domain.Depositor, file string, metadata domain.SubmissionMetadata, cfg domain.RepositoryConfig) domain.OperationResult {
	start := time.Now()
	depositID := uuid.New().String()
	ctx = observability.WithDepositID(ctx, depositID)
	logger := observability.WithDepositContext(r.logger, depositID, filepath.Base(file))

	r.metrics.RecordDepositStarted()
	logger.Info().Str("depositor", depositor.UniqueName).Str("path", file).Msg("depositing file")

	api := r.currentAPI()
	if api == nil && cfg.Identifier != "" {
		if err := r.Configure(cfg); err != nil {
			return r.fail(logger, observability.StageCreate, start, err)
		}
		api = r.currentAPI()
	}
	if api == nil {
		return r.fail(logger, observability.StageCreate, start, domain.ErrNotConfigured)
	}

	article := NewMapper(r.cache, logger).Map(ctx, &metadata)
	logger.Info().
		Str("title", article.Title).
		Int("authors", len(article.Authors)).
		Ints64("categories", article.Categories).
		Int("license", article.License).
		Msg("article to create")

	loc, err := api.CreateArticle(ctx, article)
	if err != nil {
		return r.fail(logger, observability.StageCreate, start, err)
	}
	articleID := loc.ID()
	logger = observability.WithArticleContext(logger, articleID)

	link, err := NewLinkResolver(api, logger, r.metrics).Resolve(ctx, articleID)
	if err != nil {
		return r.fail(logger, observability.StageCreate, start, err)
	}
	logger.Info().Str("url", link).Msg("new article will be at url")

	if err := r.upload(ctx, api, logger, articleID, file); err != nil {
		return r.fail(logger, observability.StageUpload, start, err)
	}
	r.metrics.RecordDepositSucceeded(time.Since(start).Seconds())

	message := msgDepositSucceeded
	if metadata.Publish {
		published := api.PublishArticle(ctx, articleID)
		if published.HasError() {
			logger.Warn().Str("error", published.Error.Message).Msg("publishing failed")
			r.metrics.RecordPublish(observability.PublishFailed)
			message += fmt.Sprintf(msgPublishFailedFmt, published.Error.Message)
		} else {
			logger.Info().Msg("article published")
			r.metrics.RecordPublish(observability.PublishSucceeded)
			message += msgPublishSucceeded
			if published.Data != nil && published.Data.Location != "" {
				link = published.Data.Location
			}
		}
	}

	return domain.NewSuccessResult(message, link)
}

// upload sends file to the article, expanding zip archives.
func (r *FigshareRepository) upload(ctx context.Context, api figshare.API, logger zerolog.Logger, articleID, file string) error {
	if err := api.UploadFile(ctx, articleID, file); err != nil {
		return err
	}
	r.metrics.RecordFileUploaded()

	if !isZip(file) {
		return nil
	}

	logger.Info().Msg("uploading archive entries")
	err := r.archive.Walk(ctx, file, func(ctx context.Context, entry string) error {
		if err := api.UploadFile(ctx, articleID, entry); err != nil {
			return err
		}
		r.metrics.RecordFileUploaded()
		return nil
	}, archive.ExcludeContaining(ResourceFolderMarker))
	if err != nil {
		return fmt.Errorf("uploading archive entries: %w", err)
	}
	return nil
}

func (r *FigshareRepository) fail(logger zerolog.Logger, stage string, start time.Time, err error) domain.OperationResult {
	logger.Error().Err(err).Str("stage", stage).Msg("deposit failed")
	r.metrics.RecordDepositFailed(stage, time.Since(start).Seconds())
	return domain.NewFailureResult(msgSubmitFailedPrefix + err.Error())
}

// isZip reports whether the file extension is exactly "zip".
func isZip(file string) bool {
	return strings.TrimPrefix(filepath.Ext(file), ".") == "zip"
}

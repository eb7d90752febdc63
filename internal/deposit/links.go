package deposit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
	"github.com/helixir/figshare-connector/internal/observability"
)

// Link strategy names, also used as metric labels.
const (
	StrategyPrivateLink = "private_link"
	StrategyPrivateURL  = "private_url"
	StrategyPublicURL   = "public_url"
	StrategyNone        = "none"
)

// linkLookup carries per-resolution state shared between strategies.
type linkLookup struct {
	api       figshare.API
	articleID string
	article   *figshare.ArticlePresenter
}

// presentation fetches the article once per resolution.
func (l *linkLookup) presentation(ctx context.Context) (*figshare.ArticlePresenter, error) {
	if l.article == nil {
		article, err := l.api.GetArticle(ctx, l.articleID)
		if err != nil {
			return nil, err
		}
		l.article = article
	}
	return l.article, nil
}

// linkStrategy returns a URL for the article, or "" to defer to the next strategy.
type linkStrategy struct {
	name    string
	resolve func(ctx context.Context, l *linkLookup) (string, error)
}

// linkStrategies are tried in order; the first non-empty URL wins.
var linkStrategies = []linkStrategy{
	{
		name: StrategyPrivateLink,
		resolve: func(ctx context.Context, l *linkLookup) (string, error) {
			link, err := l.api.CreatePrivateArticleLink(ctx, l.articleID)
			if err != nil {
				return "", err
			}
			return link.WebLink(), nil
		},
	},
	{
		name: StrategyPrivateURL,
		resolve: func(ctx context.Context, l *linkLookup) (string, error) {
			article, err := l.presentation(ctx)
			if err != nil {
				return "", err
			}
			return article.PrivateURL(), nil
		},
	},
	{
		name: StrategyPublicURL,
		resolve: func(ctx context.Context, l *linkLookup) (string, error) {
			article, err := l.presentation(ctx)
			if err != nil {
				return "", err
			}
			return article.PublicURL(), nil
		},
	},
}

// LinkResolver finds the best URL to show for a newly created article.
type LinkResolver struct {
	api     figshare.API
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewLinkResolver creates a LinkResolver.
func NewLinkResolver(api figshare.API, logger zerolog.Logger, metrics *observability.Metrics) *LinkResolver {
	return &LinkResolver{api: api, logger: logger, metrics: metrics}
}

// Resolve returns a private shareable link to the article, falling back to
// the private and then the public view URL of the article. Creating a
// private link requires the account to be linked to ORCID, so any remote
// failure of that call moves on to the next strategy; only cancellation of
// ctx stops there. Errors from the later strategies are returned. An empty
// URL with a nil error means no link is available.
func (r *LinkResolver) Resolve(ctx context.Context, articleID string) (string, error) {
	lookup := &linkLookup{api: r.api, articleID: articleID}

	for _, s := range linkStrategies {
		url, err := s.resolve(ctx, lookup)
		if err != nil {
			if s.name == StrategyPrivateLink && ctx.Err() == nil {
				ev := r.logger.Warn().Err(err).Str("article_id", articleID)
				if domain.IsAuthorizationError(err) {
					ev.Msg("could not create private link, account may need an ORCID id")
				} else {
					ev.Msg("could not create private link")
				}
				continue
			}
			return "", fmt.Errorf("resolving %s: %w", s.name, err)
		}
		if url != "" {
			r.metrics.RecordLinkResolution(s.name)
			return url, nil
		}
		r.logger.Info().Str("article_id", articleID).Str("strategy", s.name).Msg("no link from strategy")
	}

	r.metrics.RecordLinkResolution(StrategyNone)
	r.logger.Warn().Str("article_id", articleID).Msg("could not find any link for the created article")
	return "", nil
}

package deposit

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
	"github.com/helixir/figshare-connector/internal/observability"
)

func TestLinkResolver_Resolve(t *testing.T) {
	const (
		privateURL = "https://figshare.com/account/articles/77"
		publicURL  = "https://figshare.com/articles/dataset/x/77"
	)

	tests := []struct {
		name            string
		privateLinkErr  error
		article         figshare.ArticlePresenter
		wantURL         string
		wantGetArticles int
	}{
		{
			name:            "private link wins",
			wantURL:         "https://figshare.com/s/abc123",
			wantGetArticles: 0,
		},
		{
			name:            "forbidden falls back to private url",
			privateLinkErr:  forbidden(),
			article:         figshare.ArticlePresenter{URLPrivateHTML: privateURL, URLPublicHTML: publicURL},
			wantURL:         privateURL,
			wantGetArticles: 1,
		},
		{
			name:            "unauthorized falls back to public url",
			privateLinkErr:  domain.NewExternalAPIError("Figshare", http.StatusUnauthorized, "no", nil),
			article:         figshare.ArticlePresenter{URLPublicHTML: publicURL},
			wantURL:         publicURL,
			wantGetArticles: 1,
		},
		{
			name:            "no link available",
			privateLinkErr:  forbidden(),
			wantURL:         "",
			wantGetArticles: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.privateLinkErr = tt.privateLinkErr
			api.article = tt.article

			url, err := NewLinkResolver(api, zerolog.Nop(), nil).Resolve(context.Background(), "77")

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, 1, api.privateLinks)
			assert.Equal(t, tt.wantGetArticles, api.getArticles)
		})
	}
}

func TestLinkResolver_RemoteFailureFallsThrough(t *testing.T) {
	const privateURL = "https://figshare.com/account/articles/77"

	tests := []struct {
		name string
		err  error
	}{
		{"server error", domain.NewExternalAPIError("Figshare", http.StatusInternalServerError, "boom", nil)},
		{"not found", domain.NewExternalAPIError("Figshare", http.StatusNotFound, "no such article", nil)},
		{"rate limited", domain.NewExternalAPIError("Figshare", http.StatusTooManyRequests, "slow down", nil)},
		{"transport", errors.New("executing request: connection reset by peer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.privateLinkErr = tt.err
			api.article = figshare.ArticlePresenter{URLPrivateHTML: privateURL}

			url, err := NewLinkResolver(api, zerolog.Nop(), nil).Resolve(context.Background(), "77")

			require.NoError(t, err)
			assert.Equal(t, privateURL, url)
			assert.Equal(t, 1, api.getArticles)
		})
	}
}

func TestLinkResolver_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := newFakeAPI()
	api.privateLinkErr = ctx.Err()

	_, err := NewLinkResolver(api, zerolog.Nop(), nil).Resolve(ctx, "77")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, api.getArticles)
}

func TestLinkResolver_GetArticleErrorAborts(t *testing.T) {
	api := newFakeAPI()
	api.privateLinkErr = forbidden()
	api.getArticleErr = domain.NewExternalAPIError("Figshare", http.StatusNotFound, "gone", nil)

	_, err := NewLinkResolver(api, zerolog.Nop(), nil).Resolve(context.Background(), "77")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, api.getArticles)
}

func TestLinkResolver_EmptyPrivateLinkFallsThrough(t *testing.T) {
	api := newFakeAPI()
	api.privateLink = ""
	api.article = figshare.ArticlePresenter{URLPrivateHTML: "https://figshare.com/account/articles/77"}

	url, err := NewLinkResolver(api, zerolog.Nop(), nil).Resolve(context.Background(), "77")

	require.NoError(t, err)
	assert.Equal(t, "https://figshare.com/account/articles/77", url)
}

func TestLinkResolver_RecordsStrategy(t *testing.T) {
	metrics := observability.NewMetrics("test_deposit_link_strategy")
	api := newFakeAPI()
	api.privateLinkErr = forbidden()

	_, err := NewLinkResolver(api, zerolog.Nop(), metrics).Resolve(context.Background(), "77")
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LinkResolutions.WithLabelValues(StrategyNone)))
}

// Package figshare provides the Figshare API v2 client used by the deposit connector.
//
// The API interface is the contract the deposit workflow depends on; Client
// implements it over HTTP. Tests substitute their own implementations.
package figshare

import (
	"context"
)

// ReferenceSource lists the remote taxonomy and license reference data.
type ReferenceSource interface {
	// Categories returns the category taxonomy. all selects the account-wide
	// list rather than the public one.
	Categories(ctx context.Context, all bool) ([]Category, error)

	// Licenses returns the licenses available to the account when all is
	// true, or the public license list otherwise.
	Licenses(ctx context.Context, all bool) ([]License, error)
}

// API defines the Figshare operations the deposit connector needs.
type API interface {
	ReferenceSource

	// CreateArticle creates a private draft article.
	CreateArticle(ctx context.Context, article *ArticlePost) (*Location, error)

	// GetArticle fetches the account view of an article.
	GetArticle(ctx context.Context, articleID string) (*ArticlePresenter, error)

	// CreatePrivateArticleLink creates a shareable link to an unpublished article.
	// Accounts without a linked ORCID identity get an authorization error.
	CreatePrivateArticleLink(ctx context.Context, articleID string) (*PrivateLink, error)

	// UploadFile uploads the file at path as a new file of the article.
	UploadFile(ctx context.Context, articleID string, path string) error

	// PublishArticle publishes the article. Failures are reported in the envelope.
	PublishArticle(ctx context.Context, articleID string) Response[Location]

	// Test performs an authenticated read and reports whether it returned an account.
	Test(ctx context.Context) (bool, error)
}

package deposit

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
)

// fakeAPI is an in-memory figshare.API recording every call.
type fakeAPI struct {
	categories []figshare.Category
	licenses   []figshare.License

	createErr      error
	privateLinkErr error
	privateLink    string
	getArticleErr  error
	article        figshare.ArticlePresenter
	uploadErr      error
	uploadFailAt   int
	publishResp    figshare.Response[figshare.Location]
	testOK         bool
	testErr        error
	categoriesErr  error
	licensesErr    error

	created       []*figshare.ArticlePost
	privateLinks  int
	getArticles   int
	uploads       []string
	published     []string
	categoryCalls int
	licenseCalls  int
}

var _ figshare.API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		categories: []figshare.Category{
			{ID: 1, ParentID: 3, Title: "c1"},
			{ID: 2, ParentID: 3, Title: "c2"},
		},
		licenses: []figshare.License{
			{Value: 2, Name: "CC0", URL: "https://creativecommons.org/publicdomain/zero/1.0/"},
			{Value: 5, Name: "MIT", URL: "https://opensource.org/licenses/MIT"},
		},
		privateLink: "https://figshare.com/s/abc123",
		publishResp: figshare.Response[figshare.Location]{
			Data: &figshare.Location{Location: "https://api.figshare.com/v2/articles/77"},
		},
		testOK: true,
	}
}

func forbidden() error {
	return domain.NewExternalAPIError("Figshare", http.StatusForbidden, "ORCID required", nil)
}

func (f *fakeAPI) Categories(_ context.Context, _ bool) ([]figshare.Category, error) {
	f.categoryCalls++
	return f.categories, f.categoriesErr
}

func (f *fakeAPI) Licenses(_ context.Context, _ bool) ([]figshare.License, error) {
	f.licenseCalls++
	return f.licenses, f.licensesErr
}

func (f *fakeAPI) CreateArticle(_ context.Context, article *figshare.ArticlePost) (*figshare.Location, error) {
	f.created = append(f.created, article)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &figshare.Location{Location: "https://api.figshare.com/v2/account/articles/77", EntityID: 77}, nil
}

func (f *fakeAPI) GetArticle(_ context.Context, _ string) (*figshare.ArticlePresenter, error) {
	f.getArticles++
	if f.getArticleErr != nil {
		return nil, f.getArticleErr
	}
	article := f.article
	return &article, nil
}

func (f *fakeAPI) CreatePrivateArticleLink(_ context.Context, _ string) (*figshare.PrivateLink, error) {
	f.privateLinks++
	if f.privateLinkErr != nil {
		return nil, f.privateLinkErr
	}
	return &figshare.PrivateLink{HTMLLocation: f.privateLink}, nil
}

func (f *fakeAPI) UploadFile(_ context.Context, _ string, path string) error {
	f.uploads = append(f.uploads, filepath.Base(path))
	if f.uploadErr != nil && len(f.uploads) >= f.uploadFailAt {
		return f.uploadErr
	}
	return nil
}

func (f *fakeAPI) PublishArticle(_ context.Context, articleID string) figshare.Response[figshare.Location] {
	f.published = append(f.published, articleID)
	return f.publishResp
}

func (f *fakeAPI) Test(_ context.Context) (bool, error) {
	return f.testOK, f.testErr
}

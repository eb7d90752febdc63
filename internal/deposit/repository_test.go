package deposit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/figshare-connector/internal/domain"
)

func TestTestConnection(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		repo := newTestRepository(t, newFakeAPI())

		result := repo.TestConnection(context.Background())

		assert.True(t, result.Succeeded)
		assert.Equal(t, "Test connection OK!", result.Message)
		assert.Empty(t, result.URL)
	})

	t.Run("empty account", func(t *testing.T) {
		api := newFakeAPI()
		api.testOK = false
		repo := newTestRepository(t, api)

		result := repo.TestConnection(context.Background())

		assert.False(t, result.Succeeded)
		assert.Equal(t, "Test connection failed - please check settings.", result.Message)
	})

	t.Run("client error", func(t *testing.T) {
		api := newFakeAPI()
		api.testOK = false
		api.testErr = domain.NewExternalAPIError("Figshare", http.StatusUnauthorized, "Invalid token", nil)
		repo := newTestRepository(t, api)

		result := repo.TestConnection(context.Background())

		assert.False(t, result.Succeeded)
		assert.Equal(t, "Test connection failed - Figshare API error (status 401): Invalid token", result.Message)
	})

	t.Run("not configured", func(t *testing.T) {
		repo := NewFigshareRepository(nil, Options{Logger: zerolog.Nop()})

		result := repo.TestConnection(context.Background())

		assert.False(t, result.Succeeded)
		assert.Equal(t, "Test connection failed - repository not configured", result.Message)
	})
}

func TestConfigure(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		repo := NewFigshareRepository(nil, Options{Logger: zerolog.Nop()})

		err := repo.Configurer().Configure(domain.RepositoryConfig{Identifier: "  "})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, repo.currentAPI())
	})

	t.Run("builds a client against the server url", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			assert.Equal(t, "/account", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": 12}`))
		}))
		defer server.Close()

		repo := NewFigshareRepository(nil, Options{Logger: zerolog.Nop()})
		require.NoError(t, repo.Configure(domain.RepositoryConfig{Identifier: "secret", ServerURL: server.URL}))

		result := repo.TestConnection(context.Background())

		assert.True(t, result.Succeeded)
		assert.Equal(t, "token secret", auth)
	})

	t.Run("submit configures from per-call config", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "Invalid token"}`))
		}))
		defer server.Close()

		repo := NewFigshareRepository(nil, Options{Logger: zerolog.Nop()})
		file := writeFile(t, "notes.txt", "hello")

		result := repo.SubmitDeposit(context.Background(), depositor, file, domain.SubmissionMetadata{Title: "t"},
			domain.RepositoryConfig{Identifier: "secret", ServerURL: server.URL})

		assert.False(t, result.Succeeded)
		assert.Contains(t, result.Message, "Invalid token")
		assert.NotNil(t, repo.currentAPI())
	})
}

func TestSubjectsAndLicenses(t *testing.T) {
	api := newFakeAPI()
	api.categories = append(api.categories, api.categories[0])
	api.categories[2].Title = "a0"
	repo := newTestRepository(t, api)

	subjects, err := repo.Subjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Subject{{Name: "a0"}, {Name: "c1"}, {Name: "c2"}}, subjects)

	info, err := repo.LicenseConfigInfo(context.Background())
	require.NoError(t, err)
	assert.True(t, info.LicenseRequired)
	assert.False(t, info.OtherLicensePermitted)
	require.Len(t, info.Licenses, 2)
	assert.Equal(t, "CC0", info.Licenses[0].Definition.Name)
	assert.Equal(t, "MIT", info.Licenses[1].Definition.Name)
}

func TestSubjects_FetchError(t *testing.T) {
	api := newFakeAPI()
	api.categoriesErr = errors.New("dns failure")
	repo := newTestRepository(t, api)

	_, err := repo.Subjects(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dns failure")
}

func TestLoadStatic(t *testing.T) {
	licenses, err := os.ReadFile(filepath.Join("..", "refdata", "testdata", "licenses.json"))
	require.NoError(t, err)
	categories, err := os.ReadFile(filepath.Join("..", "refdata", "testdata", "categories.json"))
	require.NoError(t, err)

	repo := NewFigshareRepository(nil, Options{Logger: zerolog.Nop()})
	require.NoError(t, repo.LoadStatic(licenses, categories))

	subjects, err := repo.Subjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, subjects, 5)

	info, err := repo.LicenseConfigInfo(context.Background())
	require.NoError(t, err)
	assert.Len(t, info.Licenses, 17)

	assert.ErrorIs(t, repo.LoadStatic(nil, nil), domain.ErrInvalidArgument)
}

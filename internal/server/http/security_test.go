package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/figshare-connector/internal/deposit"
	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/figshare"
)

// TestPathTraversal_UploadFileName verifies that a client-supplied file name
// can never place the staged export outside the staging directory.
func TestPathTraversal_UploadFileName(t *testing.T) {
	payloads := []struct {
		name     string
		fileName string
		wantBase string
	}{
		{"parent dirs", "../../etc/passwd", "passwd"},
		{"absolute path", "/etc/shadow", "shadow"},
		{"nested", "a/b/c/export.zip", "export.zip"},
		{"dot segments", "./../export.zip", "export.zip"},
	}

	for _, tc := range payloads {
		t.Run(tc.name, func(t *testing.T) {
			uploadDir := t.TempDir()
			var staged string
			repo := &mockRepository{
				submitFn: func(_ context.Context, _ domain.Depositor, file string, _ domain.SubmissionMetadata, _ domain.RepositoryConfig) domain.OperationResult {
					staged = file
					return domain.NewSuccessResult("Deposit succeeded.", "")
				},
			}
			s := NewServer(Config{UploadDir: uploadDir, MaxUploadBytes: 1 << 20}, repo, nil, zerolog.Nop(), nil)

			req := rawFileNameRequest(t, tc.fileName)
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, req)

			if rr.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
			}
			if filepath.Base(staged) != tc.wantBase {
				t.Errorf("expected staged file %s, got %s", tc.wantBase, staged)
			}
			rel, err := filepath.Rel(uploadDir, staged)
			if err != nil || strings.HasPrefix(rel, "..") {
				t.Errorf("staged file %s escaped %s", staged, uploadDir)
			}
		})
	}
}

// TestOversizedUpload verifies that bodies above the configured limit are
// rejected before the repository is called.
func TestOversizedUpload(t *testing.T) {
	called := false
	repo := &mockRepository{
		submitFn: func(context.Context, domain.Depositor, string, domain.SubmissionMetadata, domain.RepositoryConfig) domain.OperationResult {
			called = true
			return domain.OperationResult{}
		},
	}
	s := NewServer(Config{UploadDir: t.TempDir(), MaxUploadBytes: 1024}, repo, nil, zerolog.Nop(), nil)

	req := newDepositRequest(t, depositForm{
		metadata: validMetadata,
		fileName: "big.bin",
		content:  strings.Repeat("x", 64<<10),
	})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge && rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 413 or 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if called {
		t.Error("repository must not be called for an oversized upload")
	}
}

// TestTokenNotEchoed verifies an access token rejected by the repository
// never appears in the response.
func TestTokenNotEchoed(t *testing.T) {
	const token = "super-secret-token"
	repo := &mockRepository{
		configureFn: func(cfg domain.RepositoryConfig) error {
			return fmt.Errorf("building client for %s: %w", cfg.Identifier, domain.ErrServiceUnavailable)
		},
	}
	s := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/configuration", strings.NewReader(`{"token":"`+token+`"}`))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), token) {
		t.Errorf("response leaked the access token: %s", rr.Body.String())
	}
	for _, values := range rr.Header() {
		for _, v := range values {
			if strings.Contains(v, token) {
				t.Errorf("response header leaked the access token")
			}
		}
	}
}

// TestUnauthenticatedConfigureKeepsAccount runs a real repository behind the
// server: an anonymous PUT /configuration must not change the token later
// calls are made with.
func TestUnauthenticatedConfigureKeepsAccount(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer remote.Close()

	repo := deposit.NewFigshareRepository(nil, deposit.Options{
		Client: figshare.Config{BaseURL: remote.URL, RateLimit: 100, BurstSize: 100},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, repo.Configure(domain.RepositoryConfig{Identifier: "owner-token"}))
	s, ta := newAuthServer(t, repo)

	put := httptest.NewRequest(http.MethodPut, "/api/v1/configuration", strings.NewReader(`{"token":"attacker-token"}`))
	rr := serve(s, put)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := IssueToken(ta, "ops", time.Hour)
	require.NoError(t, err)
	check := httptest.NewRequest(http.MethodPost, "/api/v1/connection-test", nil)
	check.Header.Set("Authorization", "Bearer "+token)
	rr = serve(s, check)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Test connection OK!")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"token owner-token"}, seen)
}

// rawFileNameRequest builds a deposit request whose file part carries
// fileName verbatim in its Content-Disposition header.
func rawFileNameRequest(t *testing.T, fileName string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField(formFieldMetadata, validMetadata); err != nil {
		t.Fatal(err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", "application/octet-stream")
	pw, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pw.Write([]byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

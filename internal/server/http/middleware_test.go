package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/helixir/figshare-connector/internal/observability"
)

func TestRequestIDMiddleware_UsesExistingHeader(t *testing.T) {
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := observability.RequestIDFromContext(r.Context())
		if rid != "test-request-123" {
			t.Errorf("expected request ID test-request-123, got %s", rid)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "test-request-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "test-request-123" {
		t.Errorf("expected response header test-request-123, got %s", got)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var captured string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("expected a generated UUID, got %q", captured)
	}
	if got := rr.Header().Get(RequestIDHeader); got != captured {
		t.Errorf("expected response header %s, got %s", captured, got)
	}
}

func TestRecovererReturns500(t *testing.T) {
	s := newTestServer(t, &mockRepository{})
	s.router.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

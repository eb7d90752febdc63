// Package httpserver provides the HTTP API in front of the Figshare deposit connector.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/figshare-connector/internal/deposit"
)

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	repo       deposit.Repository
	validate   *validator.Validate
	metrics    http.Handler
	cfg        Config
	logger     zerolog.Logger

	authMiddleware func(http.Handler) http.Handler
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// UploadDir is where uploaded exports are staged. Empty means the system temp dir.
	UploadDir string
	// MaxUploadBytes bounds the size of a deposit request body.
	MaxUploadBytes int64
	// MetricsPath is the route the metrics handler is mounted on.
	MetricsPath string
}

// NewServer creates a new HTTP server. metrics may be nil, in which case no
// metrics route is mounted. authMiddleware guards every /api/v1 route.
func NewServer(
	cfg Config,
	repo deposit.Repository,
	metrics http.Handler,
	logger zerolog.Logger,
	authMiddleware func(http.Handler) http.Handler,
) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	s := &Server{
		repo:     repo,
		validate: validate,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger.With().Str("component", "http-server").Logger(),

		authMiddleware: authMiddleware,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(s.accessLogMiddleware)

	// Health and metrics (no auth)
	r.Get("/healthz", s.healthHandler)
	if s.metrics != nil {
		r.Handle(s.cfg.MetricsPath, s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.authMiddleware != nil {
			r.Use(s.authMiddleware)
		}
		r.Get("/subjects", s.listSubjects)
		r.Get("/licenses", s.getLicenseConfig)
		r.Put("/configuration", s.configure)
		r.Post("/connection-test", s.testConnection)
		r.Post("/deposits", s.submitDeposit)
	})

	return r
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

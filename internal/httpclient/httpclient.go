// Package httpclient provides the rate-limited HTTP transport used by remote service clients.
package httpclient

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout is the request timeout for HTTP operations.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// APIKey is an optional credential added to outgoing requests.
	APIKey string

	// APIKeyHeader is the header name for the API key (e.g., "Authorization").
	APIKeyHeader string

	// APIKeyPrefix is prepended to APIKey, e.g. "token " for Figshare personal tokens.
	APIKeyPrefix string

	// APIKeyHosts limits the credential to requests whose host (host[:port])
	// is listed. Empty sends it everywhere.
	APIKeyHosts []string
}

// Client wraps http.Client with per-host rate limiting and credential
// injection. Every request is attempted exactly once; callers decide how to
// react to failures. It is safe for concurrent use.
type Client struct {
	client  *http.Client
	limiter *HostLimiter
	config  Config
}

// New creates a new HTTP client with rate limiting.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Helixir-FigshareConnector/1.0"
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: NewHostLimiter(cfg.RateLimit, cfg.BurstSize),
		config:  cfg,
	}
}

func (c *Client) sendsCredential(host string) bool {
	if c.config.APIKey == "" || c.config.APIKeyHeader == "" {
		return false
	}
	if len(c.config.APIKeyHosts) == 0 {
		return true
	}
	for _, h := range c.config.APIKeyHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// Do executes an HTTP request after waiting for the request host's rate limiter.
// It sets the User-Agent header and, for credential hosts, the credential
// header unless the request already carries them. Non-2xx responses are returned as-is; interpreting them is
// the caller's job.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if c.sendsCredential(req.URL.Host) && req.Header.Get(c.config.APIKeyHeader) == "" {
		req.Header.Set(c.config.APIKeyHeader, c.config.APIKeyPrefix+c.config.APIKey)
	}

	if err := c.limiter.Wait(req.Context(), req.URL.Host); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

package figshare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/helixir/figshare-connector/internal/domain"
	"github.com/helixir/figshare-connector/internal/httpclient"
)

const (
	// DefaultBaseURL is the default Figshare API base URL.
	DefaultBaseURL = "https://api.figshare.com/v2"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout. Part uploads share it.
	DefaultTimeout = 5 * time.Minute

	sourceName = "Figshare"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 1 << 20

	// maxResponseBody bounds decoded JSON responses.
	maxResponseBody = 10 << 20
)

// Config holds configuration for the Figshare client.
type Config struct {
	// BaseURL is the Figshare API base URL.
	// Defaults to https://api.figshare.com/v2
	BaseURL string

	// Token is the personal or OAuth access token of the account.
	Token string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// RequestObserver receives the outcome of every remote call.
type RequestObserver interface {
	ObserveRemoteRequest(endpoint string, duration time.Duration, err error)
}

// Client implements API against the Figshare REST API.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	observer   RequestObserver
}

// Ensure Client implements API interface.
var _ API = (*Client)(nil)

// New creates a new Figshare client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		UserAgent:    cfg.UserAgent,
		APIKey:       cfg.Token,
		APIKeyHeader: "Authorization",
		APIKeyPrefix: "token ",
		APIKeyHosts:  apiHosts(cfg.BaseURL),
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// apiHosts returns the host of baseURL. File locations and upload URLs come
// back from the remote as absolute URLs; only the API host gets the token.
// An unparsable base URL yields a host that matches no request.
func apiHosts(baseURL string) []string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return []string{"invalid-base-url.invalid"}
	}
	return []string{u.Host}
}

// NewWithHTTPClient creates a new Figshare client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *httpclient.Client) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// WithObserver sets the observer notified of every remote call.
func (c *Client) WithObserver(observer RequestObserver) *Client {
	c.observer = observer
	return c
}

// CreateArticle creates a private draft article.
func (c *Client) CreateArticle(ctx context.Context, article *ArticlePost) (*Location, error) {
	var loc Location
	if err := c.call(ctx, "create_article", http.MethodPost, c.endpoint("account", "articles"), article, &loc, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}
	return &loc, nil
}

// GetArticle fetches the account view of an article.
func (c *Client) GetArticle(ctx context.Context, articleID string) (*ArticlePresenter, error) {
	var article ArticlePresenter
	if err := c.call(ctx, "get_article", http.MethodGet, c.endpoint("account", "articles", articleID), nil, &article, http.StatusOK); err != nil {
		return nil, fmt.Errorf("fetching article %s: %w", articleID, err)
	}
	return &article, nil
}

// CreatePrivateArticleLink creates a shareable link to an unpublished article.
func (c *Client) CreatePrivateArticleLink(ctx context.Context, articleID string) (*PrivateLink, error) {
	var link PrivateLink
	body := map[string]any{}
	if err := c.call(ctx, "create_private_link", http.MethodPost, c.endpoint("account", "articles", articleID, "private_links"), body, &link, http.StatusCreated, http.StatusOK); err != nil {
		return nil, fmt.Errorf("creating private link for article %s: %w", articleID, err)
	}
	return &link, nil
}

// PublishArticle publishes the article, reporting failures in the envelope.
func (c *Client) PublishArticle(ctx context.Context, articleID string) Response[Location] {
	var loc Location
	err := c.call(ctx, "publish_article", http.MethodPost, c.endpoint("account", "articles", articleID, "publish"), nil, &loc, http.StatusCreated, http.StatusOK)
	if err != nil {
		return Response[Location]{Error: toAPIError(err)}
	}
	return Response[Location]{Data: &loc}
}

// Categories returns the category taxonomy.
func (c *Client) Categories(ctx context.Context, all bool) ([]Category, error) {
	endpoint := c.endpoint("categories")
	if all {
		endpoint = c.endpoint("account", "categories")
	}

	var categories []Category
	if err := c.call(ctx, "list_categories", http.MethodGet, endpoint, nil, &categories, http.StatusOK); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// Licenses returns the license reference list.
func (c *Client) Licenses(ctx context.Context, all bool) ([]License, error) {
	endpoint := c.endpoint("licenses")
	if all {
		endpoint = c.endpoint("account", "licenses")
	}

	var licenses []License
	if err := c.call(ctx, "list_licenses", http.MethodGet, endpoint, nil, &licenses, http.StatusOK); err != nil {
		return nil, fmt.Errorf("listing licenses: %w", err)
	}
	return licenses, nil
}

// Test reads the account resource with the configured token.
func (c *Client) Test(ctx context.Context) (bool, error) {
	var account Account
	if err := c.call(ctx, "get_account", http.MethodGet, c.endpoint("account"), nil, &account, http.StatusOK); err != nil {
		return false, fmt.Errorf("reading account: %w", err)
	}
	return account.ID != 0, nil
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.config.BaseURL + "/" + strings.Join(escaped, "/")
}

// call sends a JSON request and decodes a JSON response into out.
// A nil out discards the response body.
func (c *Client) call(ctx context.Context, name, method, target string, in, out any, expected ...int) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRemoteRequest(name, time.Since(start), err)
		}
	}()

	var body io.Reader
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			return fmt.Errorf("encoding request: %w", marshalErr)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, expected) {
		return readAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusIn(status int, expected []int) bool {
	if len(expected) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range expected {
		if s == status {
			return true
		}
	}
	return false
}

// readAPIError converts a non-success response into an ExternalAPIError,
// preferring the message field of Figshare's JSON error body.
func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(raw))
	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return domain.NewExternalAPIError(sourceName, resp.StatusCode, message, nil)
}

// toAPIError extracts the remote status and message from an error.
func toAPIError(err error) *APIError {
	var extErr *domain.ExternalAPIError
	if errors.As(err, &extErr) {
		return &APIError{StatusCode: extErr.StatusCode, Message: extErr.Message}
	}
	return &APIError{Message: err.Error()}
}

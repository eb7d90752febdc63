// Package config provides configuration management for the Figshare deposit connector.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "FIGSHARE_CONNECTOR"

// Config holds all configuration for the Figshare deposit connector.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Figshare contains Figshare API client settings.
	Figshare FigshareConfig `mapstructure:"figshare"`
	// ReferenceData points at static category and license snapshots.
	ReferenceData ReferenceDataConfig `mapstructure:"reference_data"`
	// Upload contains settings for staging uploaded exports.
	Upload UploadConfig `mapstructure:"upload"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	// Deposits block until every file is uploaded, so this is generous.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AuthSecret signs and verifies API bearer tokens. Loaded from environment only.
	AuthSecret string `mapstructure:"-"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// FigshareConfig holds Figshare API client configuration.
type FigshareConfig struct {
	// BaseURL is the API base URL (default: https://api.figshare.com/v2).
	BaseURL string `mapstructure:"base_url"`
	// Token is the account access token. Loaded from environment only.
	Token string `mapstructure:"-"`
	// Timeout bounds each request, including file part uploads.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the rate limiter burst.
	BurstSize int `mapstructure:"burst_size"`
	// UserAgent overrides the default User-Agent header.
	UserAgent string `mapstructure:"user_agent"`
	// OAuth contains the registered application used to obtain tokens.
	OAuth OAuthConfig `mapstructure:"oauth"`
}

// OAuthConfig holds the Figshare OAuth application registration.
type OAuthConfig struct {
	// ClientID is the application id.
	ClientID string `mapstructure:"client_id"`
	// ClientSecret is the application secret. Loaded from environment only.
	ClientSecret string `mapstructure:"-"`
	// RedirectURL receives the authorization code.
	RedirectURL string `mapstructure:"redirect_url"`
}

// ReferenceDataConfig holds paths of static reference data snapshots.
// When both are set the connector never fetches categories or licenses.
type ReferenceDataConfig struct {
	CategoriesFile string `mapstructure:"categories_file"`
	LicensesFile   string `mapstructure:"licenses_file"`
}

// UploadConfig holds upload staging configuration.
type UploadConfig struct {
	// TempDir is where uploaded exports and extracted archive entries are staged.
	// Empty means the system temp directory.
	TempDir string `mapstructure:"temp_dir"`
	// MaxSizeBytes bounds the size of an export accepted over HTTP.
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// HasStaticReferenceData reports whether both snapshot files are configured.
func (c *ReferenceDataConfig) HasStaticReferenceData() bool {
	return c.CategoriesFile != "" && c.LicensesFile != ""
}

// Load reads configuration from defaults, an optional config.yaml and
// FIGSHARE_CONNECTOR_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/figshare-connector")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadSecrets(cfg *Config) {
	cfg.Server.AuthSecret = os.Getenv(EnvPrefix + "_SERVER_AUTH_SECRET")
	cfg.Figshare.Token = os.Getenv(EnvPrefix + "_FIGSHARE_TOKEN")
	cfg.Figshare.OAuth.ClientSecret = os.Getenv(EnvPrefix + "_FIGSHARE_OAUTH_CLIENT_SECRET")
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "figshare_connector")

	// Figshare defaults
	v.SetDefault("figshare.base_url", "https://api.figshare.com/v2")
	v.SetDefault("figshare.timeout", "5m")
	v.SetDefault("figshare.rate_limit", 5.0)
	v.SetDefault("figshare.burst_size", 5)
	v.SetDefault("figshare.user_agent", "")
	v.SetDefault("figshare.oauth.client_id", "")
	v.SetDefault("figshare.oauth.redirect_url", "")

	// Reference data defaults
	v.SetDefault("reference_data.categories_file", "")
	v.SetDefault("reference_data.licenses_file", "")

	// Upload defaults
	v.SetDefault("upload.temp_dir", "")
	v.SetDefault("upload.max_size_bytes", int64(5<<30))
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	u, err := url.Parse(c.Figshare.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid figshare base_url: %q", c.Figshare.BaseURL)
	}
	if c.Figshare.RateLimit <= 0 {
		return fmt.Errorf("figshare rate_limit must be positive")
	}
	if c.Figshare.BurstSize <= 0 {
		return fmt.Errorf("figshare burst_size must be positive")
	}
	if c.Figshare.Timeout <= 0 {
		return fmt.Errorf("figshare timeout must be positive")
	}
	if c.Figshare.OAuth.ClientID != "" && c.Figshare.OAuth.RedirectURL == "" {
		return fmt.Errorf("figshare oauth redirect_url is required when client_id is set")
	}

	if (c.ReferenceData.CategoriesFile == "") != (c.ReferenceData.LicensesFile == "") {
		return fmt.Errorf("reference_data categories_file and licenses_file must be set together")
	}

	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload max_size_bytes must be positive")
	}

	return nil
}

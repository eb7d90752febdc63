package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName tags every log entry.
const ServiceName = "figshare-connector"

// LoggingConfig describes where connector logs go and how they look.
type LoggingConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console or pretty
	Output     string // stdout or stderr
	AddSource  bool
	TimeFormat string

	// Writer, when set, replaces Output.
	Writer io.Writer
}

// DefaultLoggingConfig returns JSON logs at info level on stdout.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// NewLogger builds the connector logger. Every entry carries a timestamp and
// the service name.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	out := cfg.Writer
	if out == nil {
		out = os.Stdout
		if strings.EqualFold(cfg.Output, "stderr") {
			out = os.Stderr
		}
	}
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("service", ServiceName)
	if cfg.AddSource {
		ctx = ctx.Caller()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	return ctx.Logger().Level(level)
}

// parseLevel accepts zerolog level names in any case plus "warning".
// Anything else means info.
func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// WithDepositContext adds deposit fields to a logger.
func WithDepositContext(logger zerolog.Logger, depositID, fileName string) zerolog.Logger {
	return logger.With().
		Str("deposit_id", depositID).
		Str("file", fileName).
		Logger()
}

// WithArticleContext adds the Figshare article id to a logger.
func WithArticleContext(logger zerolog.Logger, articleID string) zerolog.Logger {
	return logger.With().
		Str("article_id", articleID).
		Logger()
}

// WithRequestContext adds the HTTP request id to a logger.
func WithRequestContext(logger zerolog.Logger, requestID string) zerolog.Logger {
	return logger.With().
		Str("request_id", requestID).
		Logger()
}

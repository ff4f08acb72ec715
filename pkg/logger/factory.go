package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config controls the process logger.
type Config struct {
	Sentry SentryConfig
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// NewJSON writes JSON records at level and above to w.
func NewJSON(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	return build([]slog.Handler{jsonSink(w, level)}, extractors)
}

// FromConfig builds the process logger: JSON on stdout at cfg.Level, with
// Sentry fan-out when a DSN is configured.
func FromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	if cfg.Sentry.DSN == "" {
		return NewJSON(os.Stdout, cfg.Level, extractors...)
	}
	return newWithSentry(cfg.Sentry, cfg.Level, extractors...)
}

// NewNope returns a logger that drops every record.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func jsonSink(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

type providerKey struct{}

// WithProvider tags ctx with the OAuth provider alias being handled.
func WithProvider(ctx context.Context, alias string) context.Context {
	return context.WithValue(ctx, providerKey{}, alias)
}

// ProviderFromContext returns the alias set by WithProvider.
func ProviderFromContext(ctx context.Context) (string, bool) {
	alias, ok := ctx.Value(providerKey{}).(string)
	return alias, ok && alias != ""
}

// ProviderExtractor adds the provider alias to log records.
func ProviderExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if alias, ok := ProviderFromContext(ctx); ok {
			return slog.String("provider", alias), true
		}
		return slog.Attr{}, false
	}
}

// RequestIDExtractor adds the chi request id to log records.
func RequestIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := middleware.GetReqID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}

// DefaultExtractors returns the extractors every oauthlink logger carries.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{RequestIDExtractor(), ProviderExtractor()}
}

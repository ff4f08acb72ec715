// Package logger builds the slog loggers used across oauthlink.
//
// Logs are JSON on stdout. A context handler pulls request-scoped values out
// of context.Context on every call through ContextExtractor functions, so
// handlers and the OAuth flow never thread ids through log calls by hand.
// Attributes named after OAuth credentials (access_token, refresh_token,
// client_secret, code, state, token) are replaced with "[REDACTED]" before
// any sink sees them.
// Two extractors ship with the package:
//
//   - RequestIDExtractor: the chi request id as "request_id"
//   - ProviderExtractor: the provider alias set by WithProvider as "provider"
//
// # Usage
//
//	log := logger.FromConfig(cfg.Log, logger.DefaultExtractors()...)
//
//	ctx = logger.WithProvider(ctx, "github")
//	log.WarnContext(ctx, "oauth state mismatch")
//	// {"level":"WARN","msg":"oauth state mismatch","request_id":"...","provider":"github"}
//
// # Sentry
//
// When SENTRY_DSN is set, records are also sent to Sentry: errors become
// issues and, unless SENTRY_MIN_LEVEL is "error", warnings are stored as
// logs. Failed callbacks and forged state therefore show up next to each
// other. Without a DSN, or if Sentry initialization fails, logging falls
// back to stdout only.
//
// NewNope returns a discarding logger for tests and library defaults.
package logger

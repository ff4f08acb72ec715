package oauth

import (
	"io"
	"log/slog"
	"net/http"
)

// Option configures an OAuth provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
	log        *slog.Logger
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, retries).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets where providers report degraded profile fetches.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// StateOption configures a RandomStateGenerator.
type StateOption func(*RandomStateGenerator)

// WithEntropySource replaces crypto/rand as the randomness source.
func WithEntropySource(r io.Reader) StateOption {
	return func(g *RandomStateGenerator) {
		if r != nil {
			g.source = r
		}
	}
}

// WithStateBytes sets how many random bytes back each token.
// Values below 16 (128 bits) are ignored.
func WithStateBytes(n int) StateOption {
	return func(g *RandomStateGenerator) {
		if n >= minStateBytes {
			g.size = n
		}
	}
}

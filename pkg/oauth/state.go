package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	minStateBytes     = 16
	defaultStateBytes = 32
)

// StateGenerator produces the anti-forgery tokens sent as the OAuth state parameter.
type StateGenerator interface {
	GenerateState() (string, error)
}

// RandomStateGenerator draws state tokens from a cryptographic random source
// and encodes them as unpadded base64url.
type RandomStateGenerator struct {
	source io.Reader
	size   int
}

// NewStateGenerator returns a generator backed by crypto/rand producing
// 256-bit tokens unless configured otherwise.
func NewStateGenerator(opts ...StateOption) *RandomStateGenerator {
	g := &RandomStateGenerator{
		source: rand.Reader,
		size:   defaultStateBytes,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateState returns a fresh URL-safe token.
// Returns ErrEntropyUnavailable if the random source cannot be read.
func (g *RandomStateGenerator) GenerateState() (string, error) {
	b := make([]byte, g.size)
	if _, err := io.ReadFull(g.source, b); err != nil {
		return "", errors.Join(ErrEntropyUnavailable, fmt.Errorf("read random bytes: %w", err))
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

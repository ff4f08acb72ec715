package oauth_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy pool drained")
}

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestRandomStateGenerator(t *testing.T) {
	t.Parallel()

	t.Run("url safe and 256 bits", func(t *testing.T) {
		t.Parallel()

		state, err := oauth.NewStateGenerator().GenerateState()
		require.NoError(t, err)
		require.Regexp(t, urlSafe, state)

		raw, err := base64.RawURLEncoding.DecodeString(state)
		require.NoError(t, err)
		require.Len(t, raw, 32)
	})

	t.Run("unique tokens", func(t *testing.T) {
		t.Parallel()

		gen := oauth.NewStateGenerator()
		seen := make(map[string]struct{}, 1000)
		for range 1000 {
			state, err := gen.GenerateState()
			require.NoError(t, err)
			_, dup := seen[state]
			require.False(t, dup)
			seen[state] = struct{}{}
		}
	})

	t.Run("entropy failure", func(t *testing.T) {
		t.Parallel()

		state, err := oauth.NewStateGenerator(oauth.WithEntropySource(failingReader{})).GenerateState()
		require.ErrorIs(t, err, oauth.ErrEntropyUnavailable)
		require.Empty(t, state)
	})

	t.Run("short read fails", func(t *testing.T) {
		t.Parallel()

		gen := oauth.NewStateGenerator(oauth.WithEntropySource(bytes.NewReader(make([]byte, 8))))
		_, err := gen.GenerateState()
		require.ErrorIs(t, err, oauth.ErrEntropyUnavailable)
	})

	t.Run("custom size", func(t *testing.T) {
		t.Parallel()

		state, err := oauth.NewStateGenerator(oauth.WithStateBytes(48)).GenerateState()
		require.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(state)
		require.NoError(t, err)
		require.Len(t, raw, 48)
	})

	t.Run("size below minimum ignored", func(t *testing.T) {
		t.Parallel()

		state, err := oauth.NewStateGenerator(oauth.WithStateBytes(4)).GenerateState()
		require.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(state)
		require.NoError(t, err)
		require.Len(t, raw, 32)
	})
}

package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		want error
		name string
		url  string
	}{
		{name: "empty", url: "", want: ErrNoURL},
		{name: "http scheme", url: "http://localhost:6379", want: ErrInvalidURL},
		{name: "no scheme", url: "localhost:6379", want: ErrInvalidURL},
		{name: "postgres scheme", url: "postgres://localhost:5432", want: ErrInvalidURL},
		{name: "invalid port", url: "redis://localhost:notaport", want: ErrInvalidURL},
		{name: "invalid database", url: "redis://localhost:6379/notanumber", want: ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, err := Open(context.Background(), tc.url)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, client)
		})
	}
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	t.Run("nil client returns ErrNotReady", func(t *testing.T) {
		t.Parallel()

		check := Healthcheck(nil)
		err := check(context.Background())
		require.ErrorIs(t, err, ErrNotReady)
	})
}

func TestShutdown_MockCloser(t *testing.T) {
	t.Parallel()

	t.Run("calls Close on the client", func(t *testing.T) {
		t.Parallel()

		mockCloser := &mockCloser{}
		shutdown := Shutdown(mockCloser)

		err := shutdown(context.Background())
		require.NoError(t, err)
		require.True(t, mockCloser.closed)
	})

	t.Run("propagates Close error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("close error")
		mockCloser := &mockCloser{err: expectedErr}
		shutdown := Shutdown(mockCloser)

		err := shutdown(context.Background())
		require.Error(t, err)
		require.Equal(t, expectedErr, err)
		require.True(t, mockCloser.closed)
	})

	t.Run("already closed client", func(t *testing.T) {
		t.Parallel()

		closer := &mockCloser{err: goredis.ErrClosed}
		require.NoError(t, Shutdown(closer)(context.Background()))
		require.True(t, closer.closed)
	})

	t.Run("nil client", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Shutdown(nil)(context.Background()))
	})
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := wait(ctx, 10*time.Second)
		elapsed := time.Since(start)

		require.Error(t, err)
		require.Equal(t, context.Canceled, err)
		require.Less(t, elapsed, 1*time.Second, "should return immediately")
	})

	t.Run("timeout completes normally", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		duration := 50 * time.Millisecond

		start := time.Now()
		err := wait(ctx, duration)
		elapsed := time.Since(start)

		require.NoError(t, err)
		require.GreaterOrEqual(t, elapsed, duration, "should wait for the full duration")
	})

	t.Run("context cancelled during wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := wait(ctx, 10*time.Second)
		elapsed := time.Since(start)

		require.Error(t, err)
		require.Equal(t, context.Canceled, err)
		require.Less(t, elapsed, 1*time.Second, "should return when context is cancelled")
		require.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "should wait until cancellation")
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		opts := defaultOptions()
		require.Equal(t, 10, opts.poolSize)
		require.Equal(t, 2, opts.minIdleConns)
		require.Equal(t, 3, opts.retryAttempts)
		require.Equal(t, 2*time.Second, opts.retryInterval)
		require.Equal(t, 3*time.Second, opts.timeout)
	})

	t.Run("non-positive values keep defaults", func(t *testing.T) {
		t.Parallel()

		opts := defaultOptions()
		WithPoolSize(0)(opts)
		WithMinIdleConns(-1)(opts)
		WithTimeout(0)(opts)
		require.Equal(t, 10, opts.poolSize)
		require.Equal(t, 2, opts.minIdleConns)
		require.Equal(t, 3*time.Second, opts.timeout)
	})

	t.Run("applied in order", func(t *testing.T) {
		t.Parallel()

		opts := defaultOptions()
		WithPoolSize(20)(opts)
		WithPoolSize(25)(opts)
		WithRetry(7, time.Second)(opts)
		WithTimeout(time.Second)(opts)

		require.Equal(t, 25, opts.poolSize)
		require.Equal(t, 7, opts.retryAttempts)
		require.Equal(t, time.Second, opts.retryInterval)
		require.Equal(t, time.Second, opts.timeout)
	})
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	client, err := Connect(context.Background(), Config{})
	require.ErrorIs(t, err, ErrNoURL)
	require.Nil(t, client)
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Open(ctx, "redis://127.0.0.1:1/0", WithRetry(1, 10*time.Millisecond), WithTimeout(200*time.Millisecond))
	require.ErrorIs(t, err, ErrUnreachable)
	require.Nil(t, client)
}

// mockCloser is a test double for io.Closer
type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

var _ io.Closer = (*mockCloser)(nil)

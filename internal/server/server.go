// Package server exposes the OAuth login flow over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/oauthlink"
	"github.com/dmitrymomot/oauthlink/pkg/health"
	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/session"
	"github.com/dmitrymomot/oauthlink/pkg/userstore"
)

// UserReader loads the profile returned by GET /me.
type UserReader interface {
	Get(ctx context.Context, id string) (*userstore.User, error)
}

// Server wires the login manager and session manager to chi routes.
type Server struct {
	cfg           Config
	auth          *oauthlink.Manager
	sessions      *session.Manager
	users         UserReader
	checks        health.Checks
	shutdownHooks []func(context.Context) error
	log           *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUserReader enables the user profile in GET /me.
func WithUserReader(r UserReader) Option {
	return func(s *Server) {
		s.users = r
	}
}

// WithReadinessCheck adds a dependency probe to GET /health/ready.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(s *Server) {
		s.checks[name] = fn
	}
}

// WithShutdownHook registers fn to run after the HTTP server stops.
// Hooks run in registration order.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.shutdownHooks = append(s.shutdownHooks, fn)
	}
}

// New creates a server.
func New(cfg Config, auth *oauthlink.Manager, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		auth:     auth,
		sessions: sessions,
		checks:   make(health.Checks),
		log:      logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.AfterLoginURL == "" {
		s.cfg.AfterLoginURL = "/"
	}
	if s.cfg.AfterLogoutURL == "" {
		s.cfg.AfterLogoutURL = "/"
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(s.checks, health.WithLogger(s.log)))

	r.Get("/auth/{provider}", s.login)
	r.Get("/auth/{provider}/callback", s.callback)
	r.Post("/logout", s.logout)
	r.Get("/me", s.me)

	return r
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and runs the shutdown hooks.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range s.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			s.log.Error("shutdown hook failed", slog.String("error", err.Error()))
		}
	}

	if len(errs) > 0 {
		s.log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}
	s.log.Info("shutdown completed")
	return nil
}

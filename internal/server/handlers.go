package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/oauthlink/pkg/oauthflow"
	"github.com/dmitrymomot/oauthlink/pkg/session"
	"github.com/dmitrymomot/oauthlink/pkg/userstore"
)

const defaultShutdownTimeout = 30 * time.Second

type meResponse struct {
	User   *userstore.User `json:"user,omitempty"`
	UserID string          `json:"user_id"`
}

// login starts the flow: GET /auth/{provider}.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessions.LoadOrCreate(ctx, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	redirect, err := s.auth.Initiate(ctx, sess, chi.URLParam(r, "provider"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Persist(ctx, w, sess); err != nil {
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

// callback finishes the flow: GET /auth/{provider}/callback.
func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alias := chi.URLParam(r, "provider")
	q := r.URL.Query()

	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sess == nil {
		s.fail(w, r, errors.Join(oauthflow.ErrStateMismatch, oauthflow.ErrStateMissing))
		return
	}

	bound := s.sessions.Bind(sess)

	if reason := q.Get("error"); reason != "" {
		if err := s.auth.Abandon(ctx, bound); err != nil {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, NewHTTPError(http.StatusBadRequest, "Login was cancelled at the provider",
			errors.Join(ErrProviderDenied, errors.New(reason))))
		return
	}

	userID, err := s.auth.HandleCallback(ctx, bound, alias, q.Get("state"), q.Get("code"))
	if err != nil {
		// The state is already gone from the store. Persist writes local
		// changes only.
		if perr := s.sessions.Persist(ctx, w, sess); perr != nil {
			err = errors.Join(err, perr)
		}
		s.fail(w, r, err)
		return
	}

	sess.Authenticate(userID)
	if err := s.sessions.RotateToken(ctx, sess); err != nil {
		s.fail(w, r, err)
		return
	}
	s.sessions.Save(w, sess)

	http.Redirect(w, r, s.cfg.AfterLoginURL, http.StatusFound)
}

// logout ends the session: POST /logout.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Destroy(ctx, w, sess); err != nil {
		s.fail(w, r, err)
		return
	}
	if sess != nil && sess.IsAuthenticated() {
		s.log.InfoContext(ctx, "user logged out", slog.String("user_id", sess.AuthenticatedUserID()))
	}

	http.Redirect(w, r, s.cfg.AfterLogoutURL, http.StatusSeeOther)
}

// me reports the signed-in user: GET /me.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sess == nil || !sess.IsAuthenticated() {
		s.fail(w, r, NewHTTPError(http.StatusUnauthorized, "Not signed in", nil))
		return
	}

	resp := meResponse{UserID: sess.AuthenticatedUserID()}
	if s.users != nil {
		u, err := s.users.Get(ctx, resp.UserID)
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			s.fail(w, r, NewHTTPError(http.StatusUnauthorized, "Not signed in", err))
			return
		case err != nil:
			s.fail(w, r, err)
			return
		}
		resp.User = u
	}

	writeJSON(w, http.StatusOK, resp)
}

// loadSession returns the request's session, or nil when it has none or it
// is no longer valid.
func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	sess, err := s.sessions.Load(r.Context(), r)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return nil, nil
	}
	return sess, err
}

package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/oauthlink/pkg/logger"
)

const (
	defaultCookieName = "__oauthlink_sid"
	defaultMaxAge     = 30 * 24 * time.Hour
	tokenBytes        = 32
)

// Manager ties sessions in a Store to a browser cookie.
type Manager struct {
	store    Store
	logger   *slog.Logger
	cookie   string
	domain   string
	path     string
	maxAge   time.Duration
	sameSite http.SameSite
	secure   bool
}

// Option configures a Manager.
type Option func(*Manager)

// NewManager creates a manager with HttpOnly, SameSite=Lax cookies on "/".
// SameSite=Lax keeps the cookie on the top-level redirect back from the provider.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		logger:   logger.NewNope(),
		cookie:   defaultCookieName,
		path:     "/",
		maxAge:   defaultMaxAge,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookie = name
		}
	}
}

// WithMaxAge sets the session lifetime.
func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxAge = d
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets the cookie Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSameSite sets the cookie SameSite attribute.
func WithSameSite(sameSite http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = sameSite
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Load returns the session named by the request cookie.
// Returns nil, nil when the request carries no cookie.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookie)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return m.store.Get(ctx, cookie.Value)
}

// LoadOrCreate returns the current session, starting a new one when the
// cookie is absent, unknown or expired.
func (m *Manager) LoadOrCreate(ctx context.Context, r *http.Request) (*Session, error) {
	sess, err := m.Load(ctx, r)
	switch {
	case err == nil && sess != nil:
		return sess, nil
	case err == nil, errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
		return m.Create(ctx, r)
	default:
		return nil, err
	}
}

// Create starts and stores a new anonymous session.
func (m *Manager) Create(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	sess := New(uuid.NewString(), token, time.Now().Add(m.maxAge))
	sess.IP = r.RemoteAddr
	sess.UserAgent = r.UserAgent()

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.saved()
	return sess, nil
}

// Persist stores pending changes and writes the cookie.
// Must be called before the response headers are written.
func (m *Manager) Persist(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess.Changed() {
		sess.LastActiveAt = time.Now()
		if err := m.store.Update(ctx, sess); err != nil {
			return err
		}
		sess.saved()
	}
	m.Save(w, sess)
	return nil
}

// Save writes the session cookie to the response.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    sess.Token,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   int(m.maxAge / time.Second),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	})
}

// RotateToken issues a new cookie token for sess. Call it whenever the
// session principal changes so a token planted before login is useless after.
func (m *Manager) RotateToken(ctx context.Context, sess *Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return err
	}
	sess.Token = newToken
	if err := m.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	sess.saved()
	return nil
}

// Bound is a session whose values are claimed from the store rather than
// from this request's private copy. It satisfies oauthflow.Claimer.
type Bound struct {
	*Session
	store Store
}

// Bind ties sess to the manager's store.
func (m *Manager) Bind(sess *Session) Bound {
	return Bound{Session: sess, store: m.store}
}

// ClaimValues atomically removes keys from the stored session and returns the
// values still stored. The keys are dropped from the local copy as well,
// without marking it changed. A session that vanished from the store has
// nothing to claim.
func (b Bound) ClaimValues(ctx context.Context, keys ...string) (map[string]string, error) {
	vals, err := b.store.Take(ctx, b.ID, keys...)
	if errors.Is(err, ErrNotFound) {
		vals, err = map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	b.take(keys)
	return vals, nil
}

// Destroy deletes sess from the store and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess != nil {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			return err
		}
		m.logger.DebugContext(ctx, "session destroyed", slog.String("session_id", sess.ID))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	})
	return nil
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

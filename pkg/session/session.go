package session

import (
	"maps"
	"time"
)

// Session is a browser session. Before login it carries the pending OAuth
// authorization (provider alias and state); after login it names the user.
type Session struct {
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`

	Values    map[string]string `json:"values,omitempty"`
	ID        string            `json:"id"`
	Token     string            `json:"-"`
	UserID    string            `json:"user_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`

	changed bool
}

// New returns an anonymous session that has not been stored yet.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]string),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		changed:      true,
	}
}

func (s *Session) IsAuthenticated() bool { return s.UserID != "" }

// AuthenticatedUserID returns the logged-in user id, or "" for anonymous sessions.
func (s *Session) AuthenticatedUserID() string { return s.UserID }

// Authenticate makes userID the session principal. Rotate the token afterwards.
func (s *Session) Authenticate(userID string) {
	if s.UserID != userID {
		s.UserID = userID
		s.changed = true
	}
}

func (s *Session) SetValue(key, val string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	if old, ok := s.Values[key]; ok && old == val {
		return
	}
	s.Values[key] = val
	s.changed = true
}

func (s *Session) GetValue(key string) (string, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes key. Removing an absent key is not a change.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.changed = true
	}
}

// take removes keys and returns the values that were present. It does not
// mark the session changed: callers use it to mirror a removal the store has
// already made.
func (s *Session) take(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.Values[k]; ok {
			out[k] = v
			delete(s.Values, k)
		}
	}
	return out
}

// Changed reports whether the session differs from its stored copy.
func (s *Session) Changed() bool { return s.changed }

func (s *Session) saved() { s.changed = false }

func (s *Session) expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// clone returns a copy that shares no mutable state with s. The copy is
// clean, as if just read from storage.
func (s *Session) clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	c.changed = false
	return &c
}

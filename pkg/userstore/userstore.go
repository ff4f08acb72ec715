// Package userstore holds reference user stores for hosts without a user
// model of their own.
//
// Users are created from the identity of their first login and can be found
// by email so later logins through another provider attach to the same
// account. Emails are matched case-insensitively using Unicode case folding.
package userstore

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/sanitizer"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("userstore: user not found")
	// ErrNilIdentity is returned when CreateFromIdentity receives nil.
	ErrNilIdentity = errors.New("userstore: nil identity")
)

// User is a local account.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
}

func fromIdentity(id string, ident *oauth.Identity, now time.Time) User {
	return User{
		ID:        id,
		Name:      sanitizer.Text(ident.Name),
		Nickname:  sanitizer.Text(ident.Nickname),
		Email:     strings.TrimSpace(ident.Email),
		Avatar:    sanitizer.URL(ident.Avatar),
		CreatedAt: now.UTC(),
	}
}

// foldEmail normalizes an address for comparison.
// A Caser is stateful, so one is built per call.
func foldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

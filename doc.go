// Package oauthlink signs users in through third-party OAuth 2.0 providers
// and links each provider identity to a local user account.
//
// A [Manager] ties three pieces together: the provider registry from
// [github.com/dmitrymomot/oauthlink/pkg/oauth], the authorization-state
// handshake from [github.com/dmitrymomot/oauthlink/pkg/oauthflow], and an
// [Authenticator] that reconciles the fetched identity with local records.
//
//	registry, err := oauth.BuildRegistry(cfg, oauth.NewCatalog(), log)
//	if err != nil {
//	    return err
//	}
//	m := oauthlink.New(registry, links, users, oauthlink.WithLogger(log))
//
//	// GET /auth/{provider}
//	url, err := m.Initiate(ctx, sess, "github")
//
//	// GET /auth/{provider}/callback
//	userID, err := m.HandleCallback(ctx, sess, "github", state, code)
//
// # Reconciliation
//
// The Authenticator resolves an identity to a user id through four branches,
// evaluated in order:
//
//  1. An existing link for the provider identity wins. Its access token is
//     refreshed and the linked user is returned, even if another user is
//     signed in.
//  2. With no link and a signed-in user, the identity is linked to that user.
//  3. With no link and no signed-in user, a user with the same email is looked
//     up when the user store implements [EmailFinder].
//  4. Otherwise a user is created from the identity and linked.
//
// Link creation relies on the store's uniqueness guarantee. When a concurrent
// callback links the same identity first, the loser reads the winning link
// and returns its user. A user created by the losing side of branch 4 is
// removed when the user store implements [UserDeleter].
package oauthlink

// Package oauthflow drives the two halves of an OAuth authorization-code
// login: sending the user to the provider and verifying the callback.
//
// Initiate looks up the provider, generates a state token and stores it in
// the caller's session together with the alias it was issued for. Complete
// consumes that stored state before doing anything else, compares it with
// the state echoed back by the provider, and only then exchanges the code
// and fetches the identity.
//
// The stored state is single use. It is removed from the session on every
// Complete call whether or not verification succeeds, so a replayed callback
// always fails with ErrStateMismatch. Sessions that implement Claimer have
// the state taken from their backing store, which also rejects a second
// callback racing the first on another copy of the same session.
//
//	flow := oauthflow.New(registry, oauth.NewStateGenerator())
//
//	url, err := flow.Initiate(ctx, sess, "github")
//	// redirect to url
//
//	ident, err := flow.Complete(ctx, sess, "github", r.FormValue("state"), r.FormValue("code"))
//	if errors.Is(err, oauthflow.ErrStateMismatch) {
//		// forged or replayed callback
//	}
package oauthflow

// Package session provides cookie-backed browser sessions for the oauthlink
// server.
//
// A Session carries two kinds of data: the short-lived OAuth authorization
// state written by oauthflow between redirect and callback, and the
// authenticated user id once a callback succeeds. *Session satisfies
// oauthflow.Session and the root package's Session interface.
//
// Sessions are persisted in a Store. MemoryStore suits tests and single
// instances; RedisStore shares sessions across instances and lets Redis
// expire them with the session.
//
// Manager maps sessions to an HttpOnly cookie:
//
//	mgr := session.NewManager(session.NewRedisStore(client), session.WithSecure(true))
//
//	sess, err := mgr.LoadOrCreate(ctx, r)
//	sess.Authenticate(userID)
//	if err := mgr.RotateToken(ctx, sess); err != nil { ... }
//	if err := mgr.Persist(ctx, w, sess); err != nil { ... }
//
// Rotate the token whenever the principal changes.
//
// Each request works on its own copy of a session. Values that must be used
// at most once across concurrent requests are claimed through Bind, which
// removes them in the store itself.
package session

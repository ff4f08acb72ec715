// Package identity stores the links between local users and provider
// accounts.
//
// A Link ties one (provider, provider user id) pair to exactly one local
// user. Create is the only place that guarantee is enforced: the in-memory
// store checks and inserts under a single lock and the PostgreSQL store uses
// INSERT ... ON CONFLICT DO NOTHING against a unique constraint. Either way,
// the loser of a concurrent insert gets ErrDuplicateLink and is expected to
// look the link up again.
//
// Links are never removed implicitly; Delete exists for an explicit unlink
// initiated by the user.
package identity

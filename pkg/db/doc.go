// Package db connects to PostgreSQL and owns the oauthlink schema.
//
// Connect builds a pgx pool from Config (DATABASE_URL and pool settings) and
// retries until the server answers. Migrate applies the users and links
// tables through goose; the SQL is rendered from embedded templates so the
// links table can carry the name set in the provider configuration file.
// RenderLinksMigration produces the same links table as a standalone goose
// SQL file for hosts that run their own migrations.
//
//	pool, err := db.Connect(ctx, cfg.DB)
//	if err != nil {
//		return err
//	}
//	schema := db.Schema{UsersTable: "users", LinksTable: "oauth_identities"}
//	if err := db.Migrate(ctx, pool, schema, cfg.DB.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Table names are validated as plain identifiers before they reach SQL;
// anything else fails with ErrInvalidIdentifier.
package db

package userstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthlink/pkg/db"
	"github.com/dmitrymomot/oauthlink/pkg/identity"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/userstore"
)

func TestNewPostgresStore_InvalidTables(t *testing.T) {
	t.Parallel()

	_, err := userstore.NewPostgresStore(nil, userstore.WithUsersTable("users;"))
	require.ErrorIs(t, err, db.ErrInvalidIdentifier)

	_, err = userstore.NewPostgresStore(nil, userstore.WithLinksTable("a.b"))
	require.ErrorIs(t, err, db.ErrInvalidIdentifier)
}

func TestPostgresStore_Integration(t *testing.T) {
	url := os.Getenv("OAUTHLINK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("OAUTHLINK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Config{ConnectionString: url, RetryAttempts: 1, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool, db.Schema{UsersTable: "users", LinksTable: oauth.DefaultTable}, "oauthlink_migrations", nil))

	users, err := userstore.NewPostgresStore(pool)
	require.NoError(t, err)
	links, err := identity.NewPostgresStore(pool)
	require.NoError(t, err)

	email := uuid.NewString() + "@Example.com"
	id, err := users.CreateFromIdentity(ctx, &oauth.Identity{Name: "Pg User", Email: email})
	require.NoError(t, err)

	found, err := users.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, id, found)

	u, err := users.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Pg User", u.Name)

	_, err = links.Create(ctx, id, "github", uuid.NewString(), "")
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, id))
	require.ErrorIs(t, users.Delete(ctx, id), userstore.ErrNotFound)

	remaining, err := links.ListByUser(ctx, id)
	require.NoError(t, err)
	require.Empty(t, remaining)

	_, err = users.Get(ctx, "7")
	require.ErrorIs(t, err, userstore.ErrNotFound)
}

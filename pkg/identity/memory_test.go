package identity_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthlink/pkg/identity"
)

var _ identity.Store = (*identity.MemoryStore)(nil)

func TestMemoryStore_CreateAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := identity.NewMemoryStore()

	_, err := store.FindByProviderIdentity(ctx, "github", "42")
	require.ErrorIs(t, err, identity.ErrNotFound)

	link, err := store.Create(ctx, "user-1", "github", "42", "tok")
	require.NoError(t, err)
	require.NotEmpty(t, link.ID)
	require.Equal(t, "user-1", link.UserID)
	require.False(t, link.CreatedAt.IsZero())

	found, err := store.FindByProviderIdentity(ctx, "github", "42")
	require.NoError(t, err)
	require.Equal(t, link.ID, found.ID)
	require.Equal(t, "tok", found.AccessToken)

	// Same provider user id on another provider is a different identity.
	_, err = store.Create(ctx, "user-2", "google", "42", "")
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
}

func TestMemoryStore_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := identity.NewMemoryStore()

	_, err := store.Create(ctx, "user-1", "github", "42", "")
	require.NoError(t, err)

	_, err = store.Create(ctx, "user-2", "github", "42", "")
	require.ErrorIs(t, err, identity.ErrDuplicateLink)
	require.Equal(t, 1, store.Len())
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := identity.NewMemoryStore()

	const workers = 32
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		dupes     atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, string(rune('a'+i%26)), "github", "42", "")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, identity.ErrDuplicateLink):
				dupes.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), succeeded.Load())
	require.Equal(t, int32(workers-1), dupes.Load())
	require.Equal(t, 1, store.Len())
}

func TestMemoryStore_Validation(t *testing.T) {
	t.Parallel()

	store := identity.NewMemoryStore()
	for _, args := range [][3]string{{"", "github", "1"}, {"u", "", "1"}, {"u", "github", ""}} {
		_, err := store.Create(context.Background(), args[0], args[1], args[2], "")
		require.ErrorIs(t, err, identity.ErrInvalidLink)
	}
}

func TestMemoryStore_UpdateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := identity.NewMemoryStore()

	link, err := store.Create(ctx, "user-1", "github", "42", "old")
	require.NoError(t, err)

	require.NoError(t, store.UpdateToken(ctx, link.ID, "new"))
	found, err := store.FindByProviderIdentity(ctx, "github", "42")
	require.NoError(t, err)
	require.Equal(t, "new", found.AccessToken)
	require.False(t, found.UpdatedAt.Before(found.CreatedAt))

	require.ErrorIs(t, store.UpdateToken(ctx, "missing", "x"), identity.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := identity.NewMemoryStore()

	link, err := store.Create(ctx, "user-1", "github", "42", "tok")
	require.NoError(t, err)
	link.AccessToken = "mutated"

	found, err := store.FindByProviderIdentity(ctx, "github", "42")
	require.NoError(t, err)
	require.Equal(t, "tok", found.AccessToken)
}

func TestMemoryStore_ListAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := identity.NewMemoryStore()

	gh, err := store.Create(ctx, "user-1", "github", "42", "")
	require.NoError(t, err)
	_, err = store.Create(ctx, "user-1", "google", "g-1", "")
	require.NoError(t, err)
	_, err = store.Create(ctx, "user-2", "facebook", "f-1", "")
	require.NoError(t, err)

	links, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, links, 2)

	require.NoError(t, store.Delete(ctx, gh.ID))
	require.ErrorIs(t, store.Delete(ctx, gh.ID), identity.ErrNotFound)

	_, err = store.FindByProviderIdentity(ctx, "github", "42")
	require.ErrorIs(t, err, identity.ErrNotFound)

	// The identity can be linked again after an explicit unlink.
	_, err = store.Create(ctx, "user-2", "github", "42", "")
	require.NoError(t, err)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

func setupTestDB(t *testing.T) CartRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	return repo
}

func TestMongo_GetCart_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	cart, err := repo.GetCart(context.Background(), domain.UserOwner("nonexistent"))

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongo_UpsertThenGet(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	owner := domain.UserOwner("user123")

	cart := domain.NewCart(owner, []domain.CartItem{
		{ID: "A", Name: "Lamp", Price: 19.99, Quantity: 2},
	})
	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, got.Owner())
	require.Len(t, got.Items, 1)
	assert.Equal(t, "A", got.Items[0].ID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestMongo_Upsert_ReplacesExisting(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	owner := domain.GuestOwner("sess-1")

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "A", Quantity: 1}})))
	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "B", Quantity: 5}})))

	got, err := repo.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "B", got.Items[0].ID)
}

func TestMongo_GuestAndUserKeysAreDistinct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(domain.GuestOwner("k1"), []domain.CartItem{{ID: "G", Quantity: 1}})))
	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(domain.UserOwner("k1"), []domain.CartItem{{ID: "U", Quantity: 1}})))

	g, err := repo.GetCart(ctx, domain.GuestOwner("k1"))
	require.NoError(t, err)
	assert.Equal(t, "G", g.Items[0].ID)

	u, err := repo.GetCart(ctx, domain.UserOwner("k1"))
	require.NoError(t, err)
	assert.Equal(t, "U", u.Items[0].ID)
}

func TestMongo_DeleteCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	owner := domain.GuestOwner("sess-1")

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "A", Quantity: 1}})))
	require.NoError(t, repo.DeleteCart(ctx, owner))

	_, err := repo.GetCart(ctx, owner)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

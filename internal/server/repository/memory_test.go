package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

func TestMemoryRepository_GetCart_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	cart, err := repo.GetCart(context.Background(), domain.UserOwner("nonexistent"))

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMemoryRepository_UpsertThenGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := domain.UserOwner("user123")

	cart := domain.NewCart(owner, []domain.CartItem{{ID: "A", Price: 10, Quantity: 3}})
	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, got.Owner())
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryRepository_Upsert_ReplacesNotAppends(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := domain.GuestOwner("sess-1")

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "A", Quantity: 1}})))
	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "B", Quantity: 2}})))

	got, err := repo.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "B", got.Items[0].ID)
}

func TestMemoryRepository_OwnersDoNotCollide(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// same key under both kinds must stay distinct records
	guest := domain.GuestOwner("k1")
	user := domain.UserOwner("k1")

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(guest, []domain.CartItem{{ID: "G", Quantity: 1}})))
	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(user, []domain.CartItem{{ID: "U", Quantity: 1}})))

	g, err := repo.GetCart(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, "G", g.Items[0].ID)

	u, err := repo.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "U", u.Items[0].ID)
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := domain.GuestOwner("sess-1")

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "A", Quantity: 1}})))
	require.NoError(t, repo.DeleteCart(ctx, owner))

	_, err := repo.GetCart(ctx, owner)
	assert.ErrorIs(t, err, ErrCartNotFound)

	assert.ErrorIs(t, repo.DeleteCart(ctx, owner), ErrCartNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := domain.UserOwner("user123")

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart(owner, []domain.CartItem{{ID: "A", Quantity: 1}})))

	got, err := repo.GetCart(ctx, owner)
	require.NoError(t, err)
	got.Items[0].Quantity = 99

	again, err := repo.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

package repository

import (
	"context"
	"errors"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the persistence contract for owner-keyed carts.
// Replace semantics only: at most one stored cart per owner, and writes
// always carry the full item list.
type CartRepository interface {
	GetCart(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, owner domain.Owner) error
}

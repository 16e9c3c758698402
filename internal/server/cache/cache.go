package cache

import (
	"context"
	"errors"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	Set(ctx context.Context, owner domain.Owner, cart *domain.Cart) error
	Delete(ctx context.Context, owner domain.Owner) error
}

var ErrCacheMiss = errors.New("cache miss")

// Disabled returns a CartCache that always misses, for deployments
// without Redis.
func Disabled() CartCache {
	return noopCache{}
}

type noopCache struct{}

func (noopCache) Get(context.Context, domain.Owner) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (noopCache) Set(context.Context, domain.Owner, *domain.Cart) error { return nil }

func (noopCache) Delete(context.Context, domain.Owner) error { return nil }

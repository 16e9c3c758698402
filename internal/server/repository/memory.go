package repository

import (
	"context"
	"sync"
	"time"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

// MemoryRepository is a process-local CartRepository for development runs
// (CART_STORE=memory) and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[domain.Owner]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[domain.Owner]*domain.Cart)}
}

func (r *MemoryRepository) GetCart(_ context.Context, owner domain.Owner) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[owner]
	if !ok {
		return nil, ErrCartNotFound
	}

	cp := *cart
	cp.Items = domain.CloneItems(cart.Items)
	return &cp, nil
}

func (r *MemoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	cp := *cart
	cp.Items = domain.CloneItems(cart.Items)
	r.carts[cart.Owner()] = &cp
	return nil
}

func (r *MemoryRepository) DeleteCart(_ context.Context, owner domain.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[owner]; !ok {
		return ErrCartNotFound
	}
	delete(r.carts, owner)
	return nil
}

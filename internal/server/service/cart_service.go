package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/cache"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/repository"
)

// CartService owns server-side cart semantics: one stored cart per owner,
// full-replace writes, and the guest empty-save guard. Merging carts is a
// client concern and never happens here.
type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	log   *slog.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache, log *slog.Logger) *CartService {
	return &CartService{
		repo:  repo,
		cache: cartCache,
		log:   log,
	}
}

// Get returns the owner's cart. A missing record reads as an empty cart;
// for authenticated owners the empty record is persisted on first read so
// the cart exists from then on.
func (s *CartService) Get(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(string(owner.Kind)+":"+owner.Key, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, owner)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get failed", "owner_kind", owner.Kind, "err", err)
		}

		cart, errGet := s.repo.GetCart(ctx, owner)
		if errGet != nil {
			if !errors.Is(errGet, repository.ErrCartNotFound) {
				return nil, errGet
			}

			cart = domain.NewCart(owner, nil)
			if owner.Kind == domain.OwnerAuthenticated {
				if errUpsert := s.repo.UpsertCart(ctx, cart); errUpsert != nil {
					return nil, errUpsert
				}
			}
			return cart, nil
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), owner, cart); errSet != nil {
				s.log.Warn("cache set failed", "owner_kind", owner.Kind, "err", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Replace upserts the full item list for the owner. An empty list from a
// guest is a no-op save: transient empty client state must not overwrite a
// real guest cart. A deliberate guest clear goes through DeleteGuest.
func (s *CartService) Replace(ctx context.Context, owner domain.Owner, items []domain.CartItem) (*domain.Cart, error) {
	if owner.Kind == domain.OwnerGuest && len(items) == 0 {
		return s.Get(ctx, owner)
	}

	cart := domain.NewCart(owner, items)
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		s.log.Error("cart upsert failed", "owner_kind", owner.Kind, "err", err)
		return nil, err
	}

	s.invalidateCache(owner)
	return cart, nil
}

// Clear empties the owner's item list. The record itself stays, so a
// subsequent read finds an empty cart rather than a missing one.
func (s *CartService) Clear(ctx context.Context, owner domain.Owner) error {
	cart := domain.NewCart(owner, nil)
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		s.log.Error("cart clear failed", "owner_kind", owner.Kind, "err", err)
		return err
	}

	s.invalidateCache(owner)
	return nil
}

// DeleteGuest removes a guest record entirely. Used after a login merge has
// consumed the guest cart; a missing record is fine (the merge may be a retry).
func (s *CartService) DeleteGuest(ctx context.Context, sessionID string) error {
	owner := domain.GuestOwner(sessionID)

	err := s.repo.DeleteCart(ctx, owner)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.log.Error("guest cart delete failed", "err", err)
		return err
	}

	s.invalidateCache(owner)
	return nil
}

func (s *CartService) invalidateCache(owner domain.Owner) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.log.Warn("cache invalidate failed", "owner_kind", owner.Kind, "err", err)
	}
}

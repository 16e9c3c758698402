package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/cartcache"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/identity"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

// State of the engine's conversation with the remote cart service.
// The local cache is UI truth in every state; Error only means the last
// remote round trip failed and the next successful push will converge.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateSynced        State = "synced"
	StateSaving        State = "saving"
	StateError         State = "error"
)

// RemoteCart is the engine's view of the remote cart service.
type RemoteCart interface {
	FetchUserCart(ctx context.Context, cred identity.Credential) ([]domain.CartItem, error)
	SaveUserCart(ctx context.Context, cred identity.Credential, items []domain.CartItem) error
	ClearUserCart(ctx context.Context, cred identity.Credential) error
	FetchGuestCart(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	SaveGuestCart(ctx context.Context, sessionID string, items []domain.CartItem) error
	ClearGuestCart(ctx context.Context, sessionID string) error
}

// Engine mediates between the local cart cache and the remote cart
// service. Every mutation lands in the cache synchronously and is then
// pushed as the full item list; a failed push is retried implicitly by
// the next mutation's push, since full-replace pushes are idempotent.
type Engine struct {
	mu       sync.Mutex
	resolver *identity.Resolver
	cache    *cartcache.Cache
	remote   RemoteCart
	log      *slog.Logger

	state State
	ident identity.Identity
}

func NewEngine(resolver *identity.Resolver, cache *cartcache.Cache, remote RemoteCart, log *slog.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		cache:    cache,
		remote:   remote,
		log:      log,
		state:    StateUninitialized,
	}
}

// Start resolves the current identity and loads its cart. The remote
// result is authoritative and overwrites the local cache; if the load
// fails, the cached items stay as they are and remain the UI truth.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ident = e.resolver.Resolve()
	e.load(ctx)
}

func (e *Engine) load(ctx context.Context) {
	e.state = StateLoading

	var (
		items []domain.CartItem
		err   error
	)
	switch e.ident.Kind {
	case identity.Authenticated:
		items, err = e.remote.FetchUserCart(ctx, *e.ident.Credential)
	default:
		items, err = e.remote.FetchGuestCart(ctx, e.ident.SessionID)
	}

	if err != nil {
		e.log.Warn("cart load failed, keeping local cache", "err", err)
		e.state = StateError
		return
	}

	if errWrite := e.cache.Write(items); errWrite != nil {
		e.log.Error("local cart write failed", "err", errWrite)
		e.state = StateError
		return
	}

	e.state = StateSynced
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Identity() identity.Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ident
}

// Items returns the current local item list.
func (e *Engine) Items() []domain.CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Read()
}

// Add puts one unit of item in the cart, deduplicating by id.
func (e *Engine) Add(ctx context.Context, item domain.CartItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureIdentity()
	items := domain.AddItem(e.cache.Read(), item)
	if err := e.cache.Write(items); err != nil {
		return err
	}

	e.push(ctx, items)
	return nil
}

// Remove drops the item with the given id. Absent ids change nothing and
// trigger no push.
func (e *Engine) Remove(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureIdentity()
	items := e.cache.Read()
	next := domain.RemoveItem(domain.CloneItems(items), id)
	if len(next) == len(items) {
		return nil
	}
	if err := e.cache.Write(next); err != nil {
		return err
	}

	e.push(ctx, next)
	return nil
}

// SetQuantity sets an item's quantity, clamped to a floor of one.
func (e *Engine) SetQuantity(ctx context.Context, id string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureIdentity()
	items, changed := domain.SetQuantity(e.cache.Read(), id, quantity)
	if !changed {
		return nil
	}
	if err := e.cache.Write(items); err != nil {
		return err
	}

	e.push(ctx, items)
	return nil
}

// Clear deliberately empties the cart, locally and remotely. This is the
// one path where an empty state is allowed to reach the server.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensureIdentity()
	if err := e.cache.Clear(); err != nil {
		return err
	}

	e.state = StateSaving
	var err error
	switch e.ident.Kind {
	case identity.Authenticated:
		err = e.remote.ClearUserCart(ctx, *e.ident.Credential)
	default:
		err = e.remote.ClearGuestCart(ctx, e.ident.SessionID)
	}
	if err != nil {
		e.log.Warn("remote cart clear failed, local state retained", "err", err)
		e.state = StateError
		return nil
	}

	e.state = StateSynced
	return nil
}

// Login installs the credential and runs the merge policy once: guest
// quantities are summed into the account cart, the merged list is pushed
// as the new account cart, and the consumed guest record and session id
// are dropped. Safe to retry: a completed merge leaves nothing to merge.
func (e *Engine) Login(ctx context.Context, cred identity.Credential) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sessionID := e.resolver.SessionID()
	if err := e.resolver.SetCredential(cred); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	e.ident = identity.Identity{Kind: identity.Authenticated, Credential: &cred}

	e.state = StateLoading
	accountItems, err := e.remote.FetchUserCart(ctx, cred)
	if err != nil {
		// Without the account cart a merged push could wipe it. Leave the
		// guest view in the cache and let the caller retry the login merge.
		e.log.Warn("account cart load failed during login", "err", err)
		e.state = StateError
		return fmt.Errorf("login cart load failed: %w", err)
	}

	guestItems := []domain.CartItem{}
	if sessionID != "" {
		guestItems, err = e.remote.FetchGuestCart(ctx, sessionID)
		if err != nil {
			// the local cache is the last known guest state
			e.log.Warn("guest cart fetch failed during login, merging local cache", "err", err)
			guestItems = e.cache.Read()
		}
	}

	merged := domain.MergeItems(accountItems, guestItems)
	if err := e.cache.Write(merged); err != nil {
		e.state = StateError
		return fmt.Errorf("local cart write failed: %w", err)
	}

	e.state = StateSaving
	if err := e.remote.SaveUserCart(ctx, cred, merged); err != nil {
		// merged cache is already correct locally; the next mutation's
		// full-replace push re-sends it
		e.log.Warn("merged cart push failed, will converge on next push", "err", err)
		e.state = StateError
		return nil
	}

	if sessionID != "" {
		if err := e.remote.ClearGuestCart(ctx, sessionID); err != nil {
			e.log.Warn("guest cart clear failed after merge, leaving orphan record", "err", err)
		}
		if err := e.resolver.DropSession(); err != nil {
			e.log.Warn("session id drop failed", "err", err)
		}
	}

	e.state = StateSynced
	return nil
}

// Logout drops the credential, begins a fresh anonymous session and
// replaces the local cache with that session's (likely empty) guest cart.
// The authenticated view is discarded, not carried over.
func (e *Engine) Logout(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.resolver.ClearCredential(); err != nil {
		return fmt.Errorf("drop credential: %w", err)
	}

	e.ident = e.resolver.Resolve()
	e.state = StateLoading

	items, err := e.remote.FetchGuestCart(ctx, e.ident.SessionID)
	if err != nil {
		e.log.Warn("guest cart load failed after logout, starting empty", "err", err)
		items = []domain.CartItem{}
		e.state = StateError
	} else {
		e.state = StateSynced
	}

	return e.cache.Write(items)
}

func (e *Engine) ensureIdentity() {
	if e.ident.Kind == "" {
		e.ident = e.resolver.Resolve()
	}
}

// push sends the full current item list for the current identity. Failures
// never roll back the cache: the optimistic local state stays UI truth and
// the next push re-sends the entire list.
func (e *Engine) push(ctx context.Context, items []domain.CartItem) {
	e.state = StateSaving

	var err error
	switch e.ident.Kind {
	case identity.Authenticated:
		err = e.remote.SaveUserCart(ctx, *e.ident.Credential, items)
	default:
		if len(items) == 0 {
			// transient empty state; only Clear may empty the remote cart
			e.state = StateSynced
			return
		}
		err = e.remote.SaveGuestCart(ctx, e.ident.SessionID, items)
	}

	if err != nil {
		e.log.Warn("cart push failed, local state retained", "err", err)
		e.state = StateError
		return
	}

	e.state = StateSynced
}

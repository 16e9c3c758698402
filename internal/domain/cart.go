package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidItem = errors.New("invalid cart item")
)

// OwnerKind distinguishes who a stored cart belongs to.
type OwnerKind string

const (
	OwnerGuest         OwnerKind = "guest"
	OwnerAuthenticated OwnerKind = "user"
)

// Owner addresses exactly one stored cart: a session id for guests,
// a user id for authenticated accounts.
type Owner struct {
	Kind OwnerKind
	Key  string
}

func GuestOwner(sessionID string) Owner {
	return Owner{Kind: OwnerGuest, Key: sessionID}
}

func UserOwner(userID string) Owner {
	return Owner{Kind: OwnerAuthenticated, Key: userID}
}

type CartItem struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

type Cart struct {
	OwnerKind OwnerKind  `bson:"owner_kind"`
	OwnerKey  string     `bson:"owner_key"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func NewCart(owner Owner, items []CartItem) *Cart {
	return &Cart{
		OwnerKind: owner.Kind,
		OwnerKey:  owner.Key,
		Items:     CloneItems(items),
	}
}

func (c *Cart) Owner() Owner {
	return Owner{Kind: c.OwnerKind, Key: c.OwnerKey}
}

// AddItem appends item to the list, or bumps the quantity by one when an
// item with the same id is already present. The incoming quantity field is
// ignored; every add is a single unit.
func AddItem(items []CartItem, item CartItem) []CartItem {
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity++
			return items
		}
	}
	item.Quantity = 1
	return append(items, item)
}

// RemoveItem deletes the entry with the given id. Absent ids are a no-op.
func RemoveItem(items []CartItem, id string) []CartItem {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// SetQuantity sets the quantity for id, clamped to a floor of one.
// Decreasing quantity never removes an item; absent ids are a no-op.
// The returned bool reports whether the list changed.
func SetQuantity(items []CartItem, id string, quantity int) ([]CartItem, bool) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range items {
		if items[i].ID == id {
			changed := items[i].Quantity != quantity
			items[i].Quantity = quantity
			return items, changed
		}
	}
	return items, false
}

// MergeItems reconciles a guest cart into an account cart on login.
// Quantities are summed for ids present in both; guest-only items are
// appended after the account items, preserving each side's order.
func MergeItems(account, guest []CartItem) []CartItem {
	merged := CloneItems(account)
	for _, g := range guest {
		found := false
		for i := range merged {
			if merged[i].ID == g.ID {
				merged[i].Quantity += g.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, g)
		}
	}
	return merged
}

// NormalizeItems sanitizes an untrusted item list: blank ids are dropped,
// duplicate ids are collapsed by summing quantities, and quantities below
// one are raised to one. Input order of first occurrence is preserved.
func NormalizeItems(items []CartItem) ([]CartItem, error) {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" {
			continue
		}
		if it.Price < 0 {
			return nil, ErrInvalidItem
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		dup := false
		for i := range out {
			if out[i].ID == it.ID {
				out[i].Quantity += it.Quantity
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return out, nil
}

// Subtotal is the price-weighted quantity sum of the list.
func Subtotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

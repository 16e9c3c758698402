package checkout

import (
	"context"
	"errors"
	"math"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

var ErrEmptyCart = errors.New("cart is empty")

// Order is the finalized handoff to the order collaborator. Everything
// after PlaceOrder (payment, fulfillment, notification) is out of this
// subsystem's hands.
type Order struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
	Tax      float64           `json:"tax"`
	Total    float64           `json:"total"`
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order Order) (orderID string, err error)
}

// Totals computes the order amounts with a flat tax rate multiplier,
// rounded to cents.
func Totals(items []domain.CartItem, taxRate float64) (subtotal, tax, total float64) {
	subtotal = roundCents(domain.Subtotal(items))
	tax = roundCents(subtotal * taxRate)
	total = roundCents(subtotal + tax)
	return subtotal, tax, total
}

// BuildOrder snapshots the item list into an Order.
func BuildOrder(items []domain.CartItem, taxRate float64) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	subtotal, tax, total := Totals(items, taxRate)
	return Order{
		Items:    domain.CloneItems(items),
		Subtotal: subtotal,
		Tax:      tax,
		Total:    total,
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

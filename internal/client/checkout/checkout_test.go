package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

func TestTotals(t *testing.T) {
	items := []domain.CartItem{
		{ID: "A", Price: 19.99, Quantity: 2},
		{ID: "B", Price: 5.00, Quantity: 1},
	}

	subtotal, tax, total := Totals(items, 0.16)

	assert.Equal(t, 44.98, subtotal)
	assert.Equal(t, 7.20, tax)
	assert.Equal(t, 52.18, total)
}

func TestTotals_RoundsToCents(t *testing.T) {
	items := []domain.CartItem{{ID: "A", Price: 0.333, Quantity: 3}}

	subtotal, tax, total := Totals(items, 0.1)

	assert.Equal(t, 1.00, subtotal)
	assert.Equal(t, 0.10, tax)
	assert.Equal(t, 1.10, total)
}

func TestTotals_ZeroRate(t *testing.T) {
	items := []domain.CartItem{{ID: "A", Price: 10, Quantity: 1}}

	subtotal, tax, total := Totals(items, 0)

	assert.Equal(t, 10.0, subtotal)
	assert.Equal(t, 0.0, tax)
	assert.Equal(t, 10.0, total)
}

func TestBuildOrder(t *testing.T) {
	items := []domain.CartItem{{ID: "A", Name: "Lamp", Price: 19.99, Quantity: 2}}

	order, err := BuildOrder(items, 0.16)
	require.NoError(t, err)

	assert.Equal(t, items, order.Items)
	assert.Equal(t, 39.98, order.Subtotal)
	assert.Equal(t, 6.40, order.Tax)
	assert.Equal(t, 46.38, order.Total)
}

func TestBuildOrder_SnapshotsItems(t *testing.T) {
	items := []domain.CartItem{{ID: "A", Price: 10, Quantity: 1}}

	order, err := BuildOrder(items, 0)
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 1, order.Items[0].Quantity)
}

func TestBuildOrder_EmptyCart(t *testing.T) {
	_, err := BuildOrder(nil, 0.16)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_AddItemAccumulatesTotal(t *testing.T) {
	a := &Product{ID: 1, Name: "A", Price: decimal.RequireFromString("10.00"), StockQuantity: 5}
	b := &Product{ID: 2, Name: "B", Price: decimal.RequireFromString("5.00"), StockQuantity: 5}

	order := NewOrder("jane@example.com", "Jane", nil)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.IsZero())

	order.AddItem(NewOrderItem(a, 2))
	order.AddItem(NewOrderItem(b, 1))

	assert.True(t, decimal.RequireFromString("25.00").Equal(order.TotalAmount))
	assert.True(t, decimal.RequireFromString("20.00").Equal(order.Items[0].Subtotal))
	assert.Equal(t, "A", order.Items[0].ProductName)
	assert.Equal(t, []int64{1, 2}, order.ProductIDs())
}

func TestNewOrderItem_ExactDecimal(t *testing.T) {
	p := &Product{ID: 3, Name: "Yoga Mat Premium", Price: decimal.RequireFromString("49.99")}
	item := NewOrderItem(p, 3)
	assert.Equal(t, "149.97", item.Subtotal.StringFixed(2))
}

func TestOrder_ProductIDsDeduplicates(t *testing.T) {
	p := &Product{ID: 9, Name: "X", Price: decimal.NewFromInt(1)}
	order := NewOrder("a@b.c", "A", nil)
	order.AddItem(NewOrderItem(p, 1))
	order.AddItem(NewOrderItem(p, 2))

	assert.Len(t, order.Items, 2)
	assert.Equal(t, []int64{9}, order.ProductIDs())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("SHIPPED")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusShipped, st)

	_, ok = ParseOrderStatus("shipped")
	assert.False(t, ok)

	assert.Len(t, OrderStatuses(), 6)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ultra-slim-laptop-15", Slugify(`Ultra-Slim Laptop 15"`))
	assert.Equal(t, "home-kitchen", Slugify("  Home & Kitchen "))
	assert.Equal(t, "4k-action-camera", Slugify("4K Action Camera"))
	assert.Equal(t, "", Slugify("!!!"))
}

package pgdb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter/generated"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"shirt":   "%shirt%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
		"":        "%%",
	}

	for in, want := range tests {
		assert.Equal(t, want, containsPattern(in), in)
	}
}

func TestPostgresDuplicate(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, postgresDuplicate(dup))
	assert.False(t, postgresDuplicate(&pgconn.PgError{Code: "23514"}))
	assert.False(t, postgresDuplicate(errors.New("boom")))

	assert.True(t, noRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
}

func TestOrderConverter_RoundTripKeepsItemOrder(t *testing.T) {
	conv := converter.NewOrderConverter()
	address := "1 Main St"

	order := domain.NewOrder("a@b.co", "Ann", &address)
	order.ID = 10
	for i, price := range []string{"3.00", "1.50", "3.00"} {
		p := &domain.Product{ID: int64(i%2 + 1), Name: "P", Price: decimal.RequireFromString(price)}
		order.AddItem(domain.NewOrderItem(p, i+1))
	}

	model, items := conv.ToModel(order)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i, item.Position)
		assert.Equal(t, int64(10), item.OrderID)
	}
	assert.Equal(t, "PENDING", model.Status)

	back := conv.ToEntity(model, items)
	assert.Equal(t, order.Items, back.Items)
	assert.True(t, order.TotalAmount.Equal(back.TotalAmount))
	assert.Equal(t, &address, back.ShippingAddress)
}

func TestProductConverter_Generated(t *testing.T) {
	conv := generated.NewProductConverterImpl()
	assert.Nil(t, conv.ToModel(nil))
	assert.Nil(t, conv.ToEntity(nil))

	models := []converter.ProductModel{
		{ID: 2, Name: "B", Price: decimal.RequireFromString("0.10"), StockQuantity: 3},
		{ID: 1, Name: "A", Price: decimal.RequireFromString("12.34"), StockQuantity: 0},
	}
	products := conv.ToArrEntity(models)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2), products[0].ID)
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("12.34")))

	model := conv.ToModel(&products[0])
	assert.Equal(t, models[0].StockQuantity, model.StockQuantity)
	assert.True(t, models[0].Price.Equal(model.Price))
}

func TestOutboxEventConverter_Generated(t *testing.T) {
	conv := generated.NewOutboxEventConverterImpl()
	processed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	event := &usecase.OutboxEvent{
		ID:          7,
		EventID:     "evt-1",
		EventType:   usecase.OrderCreated,
		AggregateID: 10,
		Payload:     []byte(`{"orderId":10}`),
		Status:      usecase.Processed,
		ProcessedAt: &processed,
	}

	model := conv.ToModel(event)
	assert.Equal(t, usecase.OrderCreated, model.EventType)
	assert.Equal(t, usecase.Processed, model.Status)

	back := conv.ToArrEntity([]*converter.OutboxEventModel{model})
	require.Len(t, back, 1)
	assert.Equal(t, event, back[0])
}

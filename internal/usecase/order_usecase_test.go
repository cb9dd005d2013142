package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type orderFixture struct {
	store *memStore
	cache *fakeCache
	tx    *fakeTxManager
	uc    *OrderUseCase
}

func newOrderFixture(products ...domain.Product) *orderFixture {
	store := newMemStore(products...)
	cache := newFakeCache()
	tx := &fakeTxManager{store: store}

	uc := NewOrderUC(
		&fakeOrderRepo{store: store},
		&fakeProductRepo{store: store},
		&fakeOutboxRepo{store: store},
		tx,
		cache,
		logger.NewNopLogger(),
	)
	uc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return &orderFixture{store: store, cache: cache, tx: tx, uc: uc}
}

func testProduct(id int64, name, price string, stock int) domain.Product {
	p := domain.NewProduct(name, "", decimal.RequireFromString(price), "", "Test", stock, name, domain.Slugify(name))
	p.ID = id
	return *p
}

func orderReq(items ...OrderItemReq) *CreateOrderReq {
	return NewCreateOrderReq("a@b.co", "Ann", nil, items)
}

func TestCreateOrder_ComputesTotalAndDecrementsStock(t *testing.T) {
	f := newOrderFixture(
		testProduct(1, "Widget", "10.00", 5),
		testProduct(2, "Gadget", "5.00", 3),
	)

	order, err := f.uc.CreateOrder(context.Background(), orderReq(
		NewOrderItemReq(1, 2),
		NewOrderItemReq(2, 1),
	))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "25.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)

	assert.Equal(t, int64(1), order.Items[0].ProductID)
	assert.Equal(t, "Widget", order.Items[0].ProductName)
	assert.Equal(t, "10.00", order.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "20.00", order.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", order.Items[1].Subtotal.StringFixed(2))

	assert.Equal(t, 3, f.store.stock(1))
	assert.Equal(t, 2, f.store.stock(2))

	// строки блокируются по возрастанию id
	require.Len(t, f.store.lockedIDs, 1)
	assert.Equal(t, []int64{1, 2}, f.store.lockedIDs[0])

	assert.ElementsMatch(t, []int64{1, 2}, f.cache.deletedIDs())
}

func TestCreateOrder_TotalEqualsSumOfSubtotals(t *testing.T) {
	f := newOrderFixture(
		testProduct(1, "A", "0.10", 100),
		testProduct(2, "B", "0.20", 100),
		testProduct(3, "C", "19.99", 100),
	)

	order, err := f.uc.CreateOrder(context.Background(), orderReq(
		NewOrderItemReq(3, 3),
		NewOrderItemReq(1, 7),
		NewOrderItemReq(2, 1),
	))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range order.Items {
		assert.True(t, item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
		sum = sum.Add(item.Subtotal)
	}
	assert.True(t, order.TotalAmount.Equal(sum))
	assert.Equal(t, "60.87", order.TotalAmount.StringFixed(2))
}

func TestCreateOrder_InsufficientStockChangesNothing(t *testing.T) {
	f := newOrderFixture(
		testProduct(1, "Widget", "10.00", 5),
		testProduct(2, "Gadget", "5.00", 1),
	)

	_, err := f.uc.CreateOrder(context.Background(), orderReq(
		NewOrderItemReq(1, 2),
		NewOrderItemReq(2, 2),
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrInsufficientStock))

	stockErr, ok := e.AsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, f.store.stock(1))
	assert.Equal(t, 1, f.store.stock(2))
	assert.Zero(t, f.store.orderCount())
	assert.Empty(t, f.store.outboxEvents())
	assert.Empty(t, f.cache.deletedIDs())
}

func TestCreateOrder_UnknownProductChangesNothing(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "10.00", 5))

	_, err := f.uc.CreateOrder(context.Background(), orderReq(
		NewOrderItemReq(1, 1),
		NewOrderItemReq(99, 1),
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrProductNotFound))

	nf, ok := e.AsNotFound(err)
	require.True(t, ok)
	assert.Equal(t, "Product not found with id: 99", nf.Error())

	assert.Equal(t, 5, f.store.stock(1))
	assert.Zero(t, f.store.orderCount())
}

func TestCreateOrder_DuplicateProductCheckedCumulatively(t *testing.T) {
	t.Run("exceeds stock in total", func(t *testing.T) {
		f := newOrderFixture(testProduct(1, "Widget", "10.00", 3))

		_, err := f.uc.CreateOrder(context.Background(), orderReq(
			NewOrderItemReq(1, 2),
			NewOrderItemReq(1, 2),
		))
		require.Error(t, err)

		stockErr, ok := e.AsInsufficientStock(err)
		require.True(t, ok)
		assert.Equal(t, 2, stockErr.Requested)
		assert.Equal(t, 1, stockErr.Available)
		assert.Equal(t, 3, f.store.stock(1))
	})

	t.Run("fits in total", func(t *testing.T) {
		f := newOrderFixture(testProduct(1, "Widget", "10.00", 3))

		order, err := f.uc.CreateOrder(context.Background(), orderReq(
			NewOrderItemReq(1, 1),
			NewOrderItemReq(1, 2),
		))
		require.NoError(t, err)

		require.Len(t, order.Items, 2)
		assert.Equal(t, "30.00", order.TotalAmount.StringFixed(2))
		assert.Zero(t, f.store.stock(1))
		assert.Equal(t, []int64{1}, f.store.lockedIDs[0])
	})
}

func TestCreateOrder_PersistFailureRollsBackStock(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "10.00", 5))
	f.store.failOrderCreate = errors.New("connection reset")

	_, err := f.uc.CreateOrder(context.Background(), orderReq(NewOrderItemReq(1, 2)))
	require.Error(t, err)
	assert.False(t, errors.Is(err, e.ErrInsufficientStock))

	assert.Equal(t, 5, f.store.stock(1))
	assert.Empty(t, f.store.outboxEvents())
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "10.00", 5))

	tests := []struct {
		name  string
		req   *CreateOrderReq
		field string
	}{
		{"missing email", NewCreateOrderReq("", "Ann", nil, []OrderItemReq{NewOrderItemReq(1, 1)}), "customerEmail"},
		{"invalid email", NewCreateOrderReq("not-an-email", "Ann", nil, []OrderItemReq{NewOrderItemReq(1, 1)}), "customerEmail"},
		{"blank name", NewCreateOrderReq("a@b.co", "   ", nil, []OrderItemReq{NewOrderItemReq(1, 1)}), "customerName"},
		{"no items", NewCreateOrderReq("a@b.co", "Ann", nil, nil), "items"},
		{"zero quantity", orderReq(NewOrderItemReq(1, 0)), "items[0].quantity"},
		{"missing product id", orderReq(NewOrderItemReq(1, 1), NewOrderItemReq(0, 1)), "items[1].productId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateOrder(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, e.ErrValidation))

			v, ok := e.AsValidation(err)
			require.True(t, ok)
			assert.Contains(t, v.Fields, tt.field)
		})
	}

	assert.Zero(t, f.tx.calls)
	assert.Equal(t, 5, f.store.stock(1))
}

func TestCreateOrder_LinesAreSnapshots(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "10.00", 5))

	order, err := f.uc.CreateOrder(context.Background(), orderReq(NewOrderItemReq(1, 1)))
	require.NoError(t, err)

	f.store.mu.Lock()
	p := f.store.products[1]
	p.Name = "Renamed"
	p.Price = decimal.RequireFromString("99.00")
	f.store.products[1] = p
	f.store.mu.Unlock()

	got, err := f.uc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Items[0].ProductName)
	assert.Equal(t, "10.00", got.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "10.00", got.TotalAmount.StringFixed(2))
}

func TestCreateOrder_WritesOutboxEvent(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "10.00", 5))
	address := "1 Main St"

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("a@b.co", "Ann", &address, []OrderItemReq{NewOrderItemReq(1, 2)}))
	require.NoError(t, err)

	events := f.store.outboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, OrderCreated, events[0].EventType)
	assert.Equal(t, order.ID, events[0].AggregateID)
	assert.Equal(t, Pending, events[0].Status)

	var body structpb.Struct
	require.NoError(t, proto.Unmarshal(events[0].Payload, &body))
	fields := body.AsMap()
	assert.Equal(t, "order.created", fields["event_type"])
	assert.Equal(t, events[0].EventID, fields["event_id"])
	assert.Equal(t, "20.00", fields["total_amount"])
	assert.Equal(t, "1 Main St", fields["shipping_address"])
	assert.Equal(t, "PENDING", fields["status"])
	assert.Len(t, fields["items"], 1)
}

func TestOrderUseCase_GetByID_NotFound(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.GetByID(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrOrderNotFound))
}

func TestOrderUseCase_GetByCustomerEmail_ExactMatch(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "1.00", 10))
	ctx := context.Background()

	_, err := f.uc.CreateOrder(ctx, NewCreateOrderReq("a@b.co", "Ann", nil, []OrderItemReq{NewOrderItemReq(1, 1)}))
	require.NoError(t, err)
	_, err = f.uc.CreateOrder(ctx, NewCreateOrderReq("c@d.co", "Bob", nil, []OrderItemReq{NewOrderItemReq(1, 1)}))
	require.NoError(t, err)

	orders, err := f.uc.GetByCustomerEmail(ctx, "a@b.co")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Ann", orders[0].CustomerName)

	orders, err = f.uc.GetByCustomerEmail(ctx, "A@B.CO")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderUseCase_UpdateStatus(t *testing.T) {
	f := newOrderFixture(testProduct(1, "Widget", "1.00", 10))
	ctx := context.Background()

	order, err := f.uc.CreateOrder(ctx, orderReq(NewOrderItemReq(1, 1)))
	require.NoError(t, err)

	// переходы не проверяются: из CANCELLED можно вернуться в PENDING
	for _, status := range []domain.OrderStatus{domain.OrderStatusCancelled, domain.OrderStatusPending, domain.OrderStatusDelivered} {
		updated, err := f.uc.UpdateStatus(ctx, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	events := f.store.outboxEvents()
	require.Len(t, events, 4)
	assert.Equal(t, OrderStatusChanged, events[3].EventType)

	delivered, err := f.uc.GetByStatus(ctx, domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, order.ID, delivered[0].ID)

	_, err = f.uc.UpdateStatus(ctx, 404, domain.OrderStatusShipped)
	assert.True(t, errors.Is(err, e.ErrOrderNotFound))
	assert.Len(t, f.store.outboxEvents(), 4)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderStatuses возвращает все известные статусы заказа.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

// ParseOrderStatus проверяет, что строка: один из известных статусов.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Order: агрегат заказа. Позиции принадлежат заказу и без него не существуют.
type Order struct {
	ID              int64
	CustomerEmail   string
	CustomerName    string
	ShippingAddress *string
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// OrderItem: снимок товара на момент заказа: название и цена не меняются вслед за каталогом.
type OrderItem struct {
	ID          int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// NewOrder создаёт заказ в статусе PENDING с нулевой суммой.
func NewOrder(customerEmail, customerName string, shippingAddress *string) *Order {
	return &Order{
		CustomerEmail:   customerEmail,
		CustomerName:    customerName,
		ShippingAddress: shippingAddress,
		Status:          OrderStatusPending,
		TotalAmount:     decimal.Zero,
		Items:           make([]OrderItem, 0),
	}
}

// NewOrderItem фиксирует цену и название товара и считает подытог.
func NewOrderItem(product *Product, quantity int) OrderItem {
	return OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// AddItem добавляет позицию и прибавляет её подытог к сумме заказа.
func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.Subtotal)
}

// ProductIDs возвращает идентификаторы товаров в порядке первого появления, без повторов.
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

//go:generate goverter gen github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter
package converter

import (
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
// goverter:extend ConvertDecimal
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []ProductModel) []domain.Product
}

// OrderConverter собирает агрегат Order из записей orders и order_items и обратно.
// Методы принимают два источника, поэтому реализация написана вручную (OrderConv).
type OrderConverter interface {
	ToModel(entity *domain.Order) (*OrderModel, []OrderItemModel)
	ToEntity(model *OrderModel, items []OrderItemModel) *domain.Order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
// goverter:extend ConvertOutboxStatus
// goverter:extend ConvertOutboxEventType
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type OrderConv struct{}

func NewOrderConverter() *OrderConv { return &OrderConv{} }

// ToModel раскладывает заказ на запись orders и позиции. Position позиции: её индекс в заказе.
func (OrderConv) ToModel(entity *domain.Order) (*OrderModel, []OrderItemModel) {
	model := &OrderModel{
		ID:              entity.ID,
		CustomerEmail:   entity.CustomerEmail,
		CustomerName:    entity.CustomerName,
		ShippingAddress: entity.ShippingAddress,
		Status:          string(entity.Status),
		TotalAmount:     entity.TotalAmount,
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}

	items := make([]OrderItemModel, 0, len(entity.Items))
	for i, item := range entity.Items {
		items = append(items, OrderItemModel{
			ID:          item.ID,
			OrderID:     entity.ID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}

	return model, items
}

// ToEntity ожидает позиции, уже отсортированные по position.
func (OrderConv) ToEntity(model *OrderModel, items []OrderItemModel) *domain.Order {
	order := &domain.Order{
		ID:              model.ID,
		CustomerEmail:   model.CustomerEmail,
		CustomerName:    model.CustomerName,
		ShippingAddress: model.ShippingAddress,
		Status:          domain.OrderStatus(model.Status),
		TotalAmount:     model.TotalAmount,
		Items:           make([]domain.OrderItem, 0, len(items)),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}

	return order
}

func ConvertPointerTime(t *time.Time) *time.Time {
	return t
}

func ConvertTime(t time.Time) time.Time {
	return t
}

func ConvertDecimal(d decimal.Decimal) decimal.Decimal {
	return d
}

func ConvertOutboxStatus(s usecase.OutboxStatus) usecase.OutboxStatus {
	return s
}

func ConvertOutboxEventType(t usecase.OutboxEventType) usecase.OutboxEventType {
	return t
}

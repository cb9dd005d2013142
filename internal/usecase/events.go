package usecase

import (
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewOrderEvent собирает outbox-событие по заказу. Payload: protobuf-сериализованный google.protobuf.Struct.
func NewOrderEvent(eventType OutboxEventType, order *domain.Order, occurredAt time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	items := make([]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"product_id":   item.ProductID,
			"product_name": item.ProductName,
			"unit_price":   item.UnitPrice.StringFixed(2),
			"quantity":     item.Quantity,
			"subtotal":     item.Subtotal.StringFixed(2),
		})
	}

	var shippingAddress any
	if order.ShippingAddress != nil {
		shippingAddress = *order.ShippingAddress
	}

	body, err := structpb.NewStruct(map[string]any{
		"event_id":         eventID,
		"event_type":       string(eventType),
		"occurred_at":      occurredAt.UTC().Format(time.RFC3339Nano),
		"order_id":         order.ID,
		"customer_email":   order.CustomerEmail,
		"customer_name":    order.CustomerName,
		"shipping_address": shippingAddress,
		"status":           string(order.Status),
		"total_amount":     order.TotalAmount.StringFixed(2),
		"items":            items,
	})
	if err != nil {
		return nil, err
	}

	payload, err := proto.Marshal(body)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: order.ID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   occurredAt,
	}, nil
}

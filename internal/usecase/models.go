package usecase

import (
	"time"

	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// CreateProductReq: запрос на создание товара. Nil-поля получают значения по умолчанию.
type CreateProductReq struct {
	Name          string           `json:"name" validate:"notblank"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price" validate:"required,dgte=0,dscale=2,dlte=9999999999.99"`
	ImageURL      string           `json:"imageUrl"`
	Category      string           `json:"category"`
	StockQuantity *int             `json:"stockQuantity" validate:"omitnil,min=0,max=2147483647"`
	SKU           *string          `json:"sku" validate:"omitnil,notblank"`
	Slug          *string          `json:"slug"`
}

// UploadProductImageReq: изображение товара, загруженное через multipart/form-data.
type UploadProductImageReq struct {
	ProductID int64
	Data      []byte
	MimeType  string
	Name      string // оригинальное имя файла (для логов)
}

// ORDER USECASE

// CreateOrderReq: запрос на оформление заказа.
type CreateOrderReq struct {
	CustomerEmail   string         `json:"customerEmail" validate:"notblank,email"`
	CustomerName    string         `json:"customerName" validate:"notblank"`
	ShippingAddress *string        `json:"shippingAddress"`
	Items           []OrderItemReq `json:"items" validate:"required,min=1,dive"`
}

// OrderItemReq: одна запрошенная позиция: товар и количество.
type OrderItemReq struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

// INFRASTRUCTURE

type UploadImageReq struct {
	ProductID int64
	Slug      string
	Data      []byte
	MimeType  string
	Name      string
}

type UploadImageRes struct {
	Key string
	URL string
}

type WriteRawMessageReq struct {
	Key     string
	Type    OutboxEventType
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "PENDING"
	Processing OutboxStatus = "PROCESSING"
	Processed  OutboxStatus = "PROCESSED"
)

type OutboxEventType string

const (
	OrderCreated       OutboxEventType = "order.created"
	OrderStatusChanged OutboxEventType = "order.status_changed"
)

// OutboxEvent: событие, записанное в одной транзакции с изменением заказа и ожидающее отправки в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewCreateOrderReq(email, name string, shippingAddress *string, items []OrderItemReq) *CreateOrderReq {
	return &CreateOrderReq{
		CustomerEmail:   email,
		CustomerName:    name,
		ShippingAddress: shippingAddress,
		Items:           items,
	}
}

func NewOrderItemReq(productID int64, quantity int) OrderItemReq {
	return OrderItemReq{
		ProductID: productID,
		Quantity:  quantity,
	}
}

func NewUploadImageReq(productID int64, slug string, data []byte, mimeType, name string) *UploadImageReq {
	return &UploadImageReq{
		ProductID: productID,
		Slug:      slug,
		Data:      data,
		MimeType:  mimeType,
		Name:      name,
	}
}

func NewUploadImageRes(key, url string) *UploadImageRes {
	return &UploadImageRes{
		Key: key,
		URL: url,
	}
}

func NewWriteRawMessageReq(key string, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Type:    eventType,
		Payload: payload,
	}
}

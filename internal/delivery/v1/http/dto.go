package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/shopspring/decimal"
)

// Цены в ответах: JSON-числа с двумя знаками после точки (299.99, 10.00).
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// REQUESTS

// Поля-указатели позволяют отличить отсутствующее поле от нулевого значения.

type CreateOrderRequest struct {
	CustomerEmail   string             `json:"customerEmail" example:"ann@example.com"`
	CustomerName    string             `json:"customerName" example:"Ann"`
	ShippingAddress *string            `json:"shippingAddress,omitempty" example:"1 Main St"`
	Items           []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID *int64 `json:"productId" example:"1"`
	Quantity  *int   `json:"quantity" example:"2"`
}

type UpdateOrderStatusRequest struct {
	Status *string `json:"status" example:"SHIPPED"`
}

type CreateProductRequest struct {
	Name          string           `json:"name" example:"Desk Lamp"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price" swaggertype:"number" example:"24.50"`
	ImageURL      string           `json:"imageUrl"`
	Category      string           `json:"category" example:"Home & Kitchen"`
	StockQuantity *int             `json:"stockQuantity" example:"10"`
	SKU           *string          `json:"sku,omitempty" example:"HOME-100"`
	Slug          *string          `json:"slug,omitempty" example:"desk-lamp"`
}

type UpdateStockRequest struct {
	StockQuantity *int `json:"stockQuantity" example:"25" validate:"required,min=0,max=2147483647"`
}

// toCreateOrderReq переносит запрос в usecase. Отсутствующие productId/quantity становятся нулями
// и отсекаются валидацией usecase с сообщениями "is required"/"at least 1".
func (r *CreateOrderRequest) toCreateOrderReq() *usecase.CreateOrderReq {
	items := make([]usecase.OrderItemReq, 0, len(r.Items))
	for _, item := range r.Items {
		var productID int64
		if item.ProductID != nil {
			productID = *item.ProductID
		}
		var quantity int
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		items = append(items, usecase.NewOrderItemReq(productID, quantity))
	}

	return usecase.NewCreateOrderReq(r.CustomerEmail, r.CustomerName, r.ShippingAddress, items)
}

func (r *CreateProductRequest) toCreateProductReq() *usecase.CreateProductReq {
	return &usecase.CreateProductReq{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		ImageURL:      r.ImageURL,
		Category:      r.Category,
		StockQuantity: r.StockQuantity,
		SKU:           r.SKU,
		Slug:          r.Slug,
	}
}

// RESPONSES

type ProductResponse struct {
	ID            int64       `json:"id" example:"1"`
	Name          string      `json:"name" example:"Premium Cotton T-Shirt"`
	Description   string      `json:"description"`
	Price         json.Number `json:"price" swaggertype:"number" example:"39.99"`
	ImageURL      string      `json:"imageUrl"`
	Category      string      `json:"category" example:"Clothing"`
	StockQuantity int         `json:"stockQuantity" example:"200"`
	SKU           string      `json:"sku" example:"CLTH-001"`
	Slug          string      `json:"slug" example:"premium-cotton-tshirt"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     *time.Time  `json:"updatedAt"`
}

type OrderItemResponse struct {
	ID          int64       `json:"id"`
	ProductID   int64       `json:"productId"`
	ProductName string      `json:"productName"`
	UnitPrice   json.Number `json:"unitPrice" swaggertype:"number"`
	Quantity    int         `json:"quantity"`
	Subtotal    json.Number `json:"subtotal" swaggertype:"number"`
}

type OrderResponse struct {
	ID              int64               `json:"id"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerName    string              `json:"customerName"`
	ShippingAddress *string             `json:"shippingAddress"`
	Status          string              `json:"status" example:"PENDING"`
	TotalAmount     json.Number         `json:"totalAmount" swaggertype:"number" example:"25.00"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       *time.Time          `json:"updatedAt"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         money(p.Price),
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		SKU:           p.SKU,
		Slug:          p.Slug,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toArrProductResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   money(item.UnitPrice),
			Quantity:    item.Quantity,
			Subtotal:    money(item.Subtotal),
		})
	}

	return OrderResponse{
		ID:              o.ID,
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		TotalAmount:     money(o.TotalAmount),
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toArrOrderResponse(orders []domain.Order) []OrderResponse {
	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i]))
	}
	return res
}

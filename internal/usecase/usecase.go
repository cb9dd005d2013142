package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-orders/internal/domain"
)

type ProductUC interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByCategory(ctx context.Context, category string) ([]domain.Product, error)
	SearchByName(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	UpdateStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)
	UploadImage(ctx context.Context, req *UploadProductImageReq) (*domain.Product, error)
}

type OrderUC interface {
	CreateOrder(ctx context.Context, req *CreateOrderReq) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
	GetByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

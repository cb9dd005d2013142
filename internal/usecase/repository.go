package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-orders/internal/domain"
)

// TxManager выполняет функцию в одной транзакции БД. Репозитории берут транзакцию из контекста.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetByIDsForUpdate блокирует строки товаров до конца транзакции. Отсутствующие id просто не попадают в результат.
	GetByIDsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	SearchByName(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)
	// DecrementStock уменьшает остаток, только если его хватает; иначе e.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)
	UpdateImageURL(ctx context.Context, id int64, imageURL string) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Release возвращает событие в очередь после неудачной отправки.
	Release(ctx context.Context, id int64) error
}

// CacheRepository: кэш карточек товаров (cache-aside).
// У каждого товара в кэше есть версия, DeleteProducts её увеличивает.
type CacheRepository interface {
	// GetProduct при промахе возвращает (nil, version, nil): version нужно передать в SetProduct.
	GetProduct(ctx context.Context, id int64) (*domain.Product, int64, error)
	// SetProduct записывает карточку, только если версия товара всё ещё равна version.
	// Иначе ничего не делает и возвращает nil.
	SetProduct(ctx context.Context, product *domain.Product, version int64) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
)

// OrderUseCase оформляет заказы и управляет их статусами.
type OrderUseCase struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	txManager   TxManager
	cacheRepo   CacheRepository
	logger      logger.Logger
	now         func() time.Time
}

func NewOrderUC(
	orderRepo OrderRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		cacheRepo:   cacheRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder оформляет заказ целиком в одной транзакции:
//  1. блокирует строки всех запрошенных товаров (FOR UPDATE, по возрастанию id);
//  2. в порядке запроса проверяет остаток с учётом уже зарезервированного в этом же заказе и собирает позиции;
//  3. списывает остатки условным UPDATE;
//  4. сохраняет заказ с позициями и outbox-событие.
//
// Любая ошибка откатывает транзакцию, так что частичных списаний не бывает.
func (o *OrderUseCase) CreateOrder(ctx context.Context, req *CreateOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.CreateOrder"

	if err := validateCreateOrder(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := o.buildOrder(ctx, req)
		if err != nil {
			return err
		}

		if err := o.decrementStock(ctx, order); err != nil {
			return err
		}

		created, err = o.orderRepo.Create(ctx, order)
		if err != nil {
			return err
		}

		return o.publish(ctx, OrderCreated, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.invalidateProducts(ctx, op, created.ProductIDs())
	o.logger.Infof("order %d created: %d item(s), total %s", created.ID, len(created.Items), created.TotalAmount.StringFixed(2))

	return created, nil
}

// buildOrder собирает заказ в памяти, ничего не изменяя в хранилище.
func (o *OrderUseCase) buildOrder(ctx context.Context, req *CreateOrderReq) (*domain.Order, error) {
	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	products, err := o.productRepo.GetByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(req.CustomerEmail, req.CustomerName, req.ShippingAddress)
	reserved := make(map[int64]int, len(products))

	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, e.NewProductNotFound(item.ProductID)
		}

		available := product.StockQuantity - reserved[product.ID]
		if available < item.Quantity {
			return nil, e.NewInsufficientStockError(product.ID, item.Quantity, available)
		}
		reserved[product.ID] += item.Quantity

		order.AddItem(domain.NewOrderItem(product, item.Quantity))
	}

	if err := validateOrderTotal(order.TotalAmount); err != nil {
		return nil, err
	}

	return order, nil
}

// decrementStock списывает остатки по каждой позиции. Условие stock >= quantity в UPDATE
// защищает от перепродажи, даже если строка не была заблокирована.
func (o *OrderUseCase) decrementStock(ctx context.Context, order *domain.Order) error {
	for _, item := range order.Items {
		product, err := o.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if errors.Is(err, e.ErrInsufficientStock) {
				available := 0
				if product != nil {
					available = product.StockQuantity
				}
				return e.NewInsufficientStockError(item.ProductID, item.Quantity, available)
			}
			return err
		}
	}

	return nil
}

func (o *OrderUseCase) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetByID"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// GetByCustomerEmail возвращает заказы с точным совпадением email, без нормализации.
func (o *OrderUseCase) GetByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	const op = "OrderUseCase.GetByCustomerEmail"

	orders, err := o.orderRepo.ListByCustomerEmail(ctx, email)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

func (o *OrderUseCase) GetByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	const op = "OrderUseCase.GetByStatus"

	orders, err := o.orderRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// UpdateStatus перезаписывает статус без проверки допустимости перехода.
func (o *OrderUseCase) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	const op = "OrderUseCase.UpdateStatus"

	var updated *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = o.orderRepo.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}

		return o.publish(ctx, OrderStatusChanged, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

// publish пишет событие в outbox в текущей транзакции.
func (o *OrderUseCase) publish(ctx context.Context, eventType OutboxEventType, order *domain.Order) error {
	event, err := NewOrderEvent(eventType, order, o.now())
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, event)
	return err
}

func (o *OrderUseCase) invalidateProducts(ctx context.Context, op string, ids []int64) {
	if len(ids) == 0 {
		return
	}

	if err := o.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		o.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}

package pgdb

import (
	"context"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

const orderColumns = `id, customer_email, customer_name, shipping_address, status, total_amount, created_at, updated_at`

// OrderRepo хранит заказы в таблицах orders и order_items.
type OrderRepo struct {
	db   tr.Executor
	conv converter.OrderConverter
}

func NewOrderRepo(db tr.Executor, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{
		db:   db,
		conv: conv,
	}
}

// Create вставляет заказ и все его позиции. Должен вызываться в транзакции вместе со списанием остатков.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, items := o.conv.ToModel(order)
	query := `
		INSERT INTO orders (customer_email, customer_name, shipping_address, status, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + orderColumns

	created, err := scanOrder(tx.QueryRow(ctx, query,
		model.CustomerEmail, model.CustomerName, model.ShippingAddress, model.Status, model.TotalAmount,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, product_id, product_name, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			created.ID, item.Position, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Subtotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range items {
		if err := results.QueryRow().Scan(&items[i].ID); err != nil {
			results.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items[i].OrderID = created.ID
	}
	if err := results.Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(created, items), nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	db := tr.ExecutorFromCtx(ctx, o.db)

	model, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.NewOrderNotFound(id))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := o.loadItems(ctx, db, []int64{model.ID})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model, items[model.ID]), nil
}

// ListByCustomerEmail: точное совпадение email, без нормализации регистра.
func (o *OrderRepo) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return o.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_email = $1 ORDER BY id`, email)
}

func (o *OrderRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return o.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY id`, string(status))
}

// UpdateStatus перезаписывает статус и возвращает заказ целиком.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tr.ExecutorFromCtx(ctx, o.db).Exec(ctx, query, id, string(status))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.NewOrderNotFound(id))
	}

	return o.GetByID(ctx, id)
}

func (o *OrderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	db := tr.ExecutorFromCtx(ctx, o.db)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models := make([]*converter.OrderModel, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
		ids = append(ids, model.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Order, 0, len(models))
	if len(models) == 0 {
		return result, nil
	}

	items, err := o.loadItems(ctx, db, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for _, model := range models {
		result = append(result, *o.conv.ToEntity(model, items[model.ID]))
	}

	return result, nil
}

// loadItems загружает позиции нескольких заказов одним запросом, сохраняя порядок внутри заказа.
func (o *OrderRepo) loadItems(ctx context.Context, db tr.Executor, orderIDs []int64) (map[int64][]converter.OrderItemModel, error) {
	query := `
		SELECT id, order_id, position, product_id, product_name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]converter.OrderItemModel, len(orderIDs))
	for rows.Next() {
		var m converter.OrderItemModel
		if err := rows.Scan(
			&m.ID, &m.OrderID, &m.Position, &m.ProductID, &m.ProductName, &m.UnitPrice, &m.Quantity, &m.Subtotal,
		); err != nil {
			return nil, err
		}
		result[m.OrderID] = append(result[m.OrderID], m)
	}

	return result, rows.Err()
}

func scanOrder(row pgx.Row) (*converter.OrderModel, error) {
	var m converter.OrderModel
	err := row.Scan(
		&m.ID, &m.CustomerEmail, &m.CustomerName, &m.ShippingAddress,
		&m.Status, &m.TotalAmount, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

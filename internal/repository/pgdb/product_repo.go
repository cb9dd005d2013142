package pgdb

import (
	"context"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/tr"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
// Каждый метод работает в транзакции из контекста, если она есть, иначе напрямую через пул.
type ProductRepo struct {
	db   tr.Executor
	conv converter.ProductConverter
}

func NewProductRepo(db tr.Executor, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		db:   db,
		conv: conv,
	}
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	model, err := scanProduct(tr.ExecutorFromCtx(ctx, p.db).QueryRow(ctx, query, id))
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.NewProductNotFound(id))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// GetByIDsForUpdate блокирует строки товаров до конца транзакции.
// Блокировки берутся по возрастанию id, поэтому встречные заказы не взаимоблокируются.
// Отсутствующих товаров в результате нет.
func (p *ProductRepo) GetByIDsForUpdate(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := collectProducts(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]*domain.Product, len(models))
	for i := range models {
		result[models[i].ID] = p.conv.ToEntity(&models[i])
	}

	return result, nil
}

func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return p.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// ListByCategory ищет по точному совпадению категории.
func (p *ProductRepo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return p.list(ctx, `SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY id`, category)
}

// SearchByName ищет подстроку в названии без учёта регистра.
func (p *ProductRepo) SearchByName(ctx context.Context, query string) ([]domain.Product, error) {
	return p.list(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE $1 ESCAPE '\' ORDER BY id`,
		containsPattern(query),
	)
}

func (p *ProductRepo) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := tr.ExecutorFromCtx(ctx, p.db).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := collectProducts(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

// Create вставляет товар. Совпадение SKU или slug с существующим товаром даёт ErrProductAlreadyExists.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m := p.conv.ToModel(product)
	query := `
		INSERT INTO products (name, description, price, image_url, category, stock_quantity, sku, slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns

	created, err := scanProduct(tr.ExecutorFromCtx(ctx, p.db).QueryRow(ctx, query,
		m.Name, m.Description, m.Price, m.ImageURL, m.Category, m.StockQuantity, m.SKU, m.Slug,
	))
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(created), nil
}

// UpdateStock перезаписывает остаток.
func (p *ProductRepo) UpdateStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET stock_quantity = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	return p.updateOne(ctx, id, query, id, quantity)
}

// DecrementStock уменьшает остаток, только если его хватает.
// При нехватке возвращает текущее состояние товара вместе с ErrInsufficientStock.
func (p *ProductRepo) DecrementStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	db := tr.ExecutorFromCtx(ctx, p.db)
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING ` + productColumns

	model, err := scanProduct(db.QueryRow(ctx, query, id, quantity))
	if err == nil {
		return p.conv.ToEntity(model), nil
	}
	if !noRows(err) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	current, err := p.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return current, e.Wrap(whereami.WhereAmI(), e.ErrInsufficientStock)
}

func (p *ProductRepo) UpdateImageURL(ctx context.Context, id int64, imageURL string) (*domain.Product, error) {
	query := `
		UPDATE products
		SET image_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	return p.updateOne(ctx, id, query, id, imageURL)
}

func (p *ProductRepo) updateOne(ctx context.Context, id int64, query string, args ...any) (*domain.Product, error) {
	model, err := scanProduct(tr.ExecutorFromCtx(ctx, p.db).QueryRow(ctx, query, args...))
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.NewProductNotFound(id))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := tr.ExecutorFromCtx(ctx, p.db).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

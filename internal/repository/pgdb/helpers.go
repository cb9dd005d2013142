package pgdb

import (
	"errors"
	"strings"

	"github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// postgresDuplicate сообщает, что запрос нарушил уникальный индекс.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern превращает пользовательскую строку в шаблон ILIKE "%...%", экранируя спецсимволы.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

const productColumns = `id, name, description, price, image_url, category, stock_quantity, sku, slug, created_at, updated_at`

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var m converter.ProductModel
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Price, &m.ImageURL, &m.Category,
		&m.StockQuantity, &m.SKU, &m.Slug, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectProducts(rows pgx.Rows) ([]converter.ProductModel, error) {
	defer rows.Close()

	models := make([]converter.ProductModel, 0)
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *m)
	}

	return models, rows.Err()
}

package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal // Точная десятичная цена, не отрицательная
	ImageURL      string
	Category      string
	StockQuantity int // Остаток на складе, никогда не отрицательный
	SKU           string
	Slug          string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func NewProduct(name, description string, price decimal.Decimal, imageURL, category string, stock int, sku, slug string) *Product {
	return &Product{
		Name:          name,
		Description:   description,
		Price:         price,
		ImageURL:      imageURL,
		Category:      category,
		StockQuantity: stock,
		SKU:           sku,
		Slug:          slug,
	}
}

// HasStock сообщает, хватает ли остатка на quantity единиц.
func (p *Product) HasStock(quantity int) bool {
	return p.StockQuantity >= quantity
}

// Slugify строит slug из названия: латиница и цифры в нижнем регистре, остальное схлопывается в "-".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

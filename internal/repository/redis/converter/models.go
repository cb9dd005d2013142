package converter

import "time"

// ProductRedisModel: карточка товара в кэше. Цена хранится строкой, чтобы не терять точность.
type ProductRedisModel struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         string     `json:"price"`
	ImageURL      string     `json:"image_url"`
	Category      string     `json:"category"`
	StockQuantity int        `json:"stock_quantity"`
	SKU           string     `json:"sku"`
	Slug          string     `json:"slug"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

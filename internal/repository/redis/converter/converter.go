//go:generate goverter gen github.com/DRSN-tech/shop-orders/internal/repository/redis/converter

package converter

import (
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/shopspring/decimal"
)

// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
// goverter:extend FormatPrice
// goverter:extend ParsePrice
type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) (*domain.Product, error)
}

func ConvertPointerTime(t *time.Time) *time.Time {
	return t
}

func ConvertTime(t time.Time) time.Time {
	return t
}

func FormatPrice(d decimal.Decimal) string {
	return d.String()
}

// ParsePrice: испорченная цена в кэше даёт ошибку, запись после этого сбрасывается.
func ParsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

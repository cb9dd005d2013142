package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name        string
	description string
	price       string
	slug        string
	category    string
	stock       int
	sku         string
}

var sampleCatalog = []seedProduct{
	{"Wireless Noise-Cancelling Headphones", "Premium over-ear headphones with active noise cancellation and 30-hour battery life", "299.99", "wireless-noise-cancelling-headphones", "Electronics", 50, "ELEC-001"},
	{"Ultra-Slim Laptop 15\"", "Lightweight 15-inch laptop with 16GB RAM and 512GB SSD", "1299.99", "ultra-slim-laptop-15", "Electronics", 25, "ELEC-002"},
	{"Smart Watch Pro", "Advanced fitness tracking, heart rate monitoring, and 7-day battery life", "399.99", "smart-watch-pro", "Electronics", 75, "ELEC-003"},
	{"4K Action Camera", "Waterproof action camera with 4K video and image stabilization", "249.99", "4k-action-camera", "Electronics", 40, "ELEC-004"},
	{"Premium Cotton T-Shirt", "100% organic cotton, comfortable fit, available in multiple colors", "39.99", "premium-cotton-tshirt", "Clothing", 200, "CLTH-001"},
	{"Leather Crossbody Bag", "Handcrafted genuine leather bag with adjustable strap", "89.99", "leather-crossbody-bag", "Clothing", 60, "CLTH-002"},
	{"Running Shoes Ultra", "Lightweight running shoes with responsive cushioning", "129.99", "running-shoes-ultra", "Clothing", 80, "CLTH-003"},
	{"Denim Jacket Classic", "Timeless denim jacket with a comfortable relaxed fit", "79.99", "denim-jacket-classic", "Clothing", 45, "CLTH-004"},
	{"Robot Vacuum Cleaner", "Smart mapping, app control, and self-emptying base", "449.99", "robot-vacuum-cleaner", "Home & Kitchen", 30, "HOME-001"},
	{"Stainless Steel Cookware Set", "10-piece set with induction-compatible pots and pans", "199.99", "stainless-steel-cookware-set", "Home & Kitchen", 35, "HOME-002"},
	{"Yoga Mat Premium", "Extra thick non-slip mat with carrying strap", "49.99", "yoga-mat-premium", "Sports", 100, "SPRT-001"},
	{"Mountain Bike Helmet", "Ventilated helmet with MIPS technology for enhanced safety", "69.99", "mountain-bike-helmet", "Sports", 90, "SPRT-002"},
}

// SampleCatalog возвращает демонстрационные товары, которыми заполняется пустой каталог.
func SampleCatalog() []domain.Product {
	products := make([]domain.Product, 0, len(sampleCatalog))
	for _, s := range sampleCatalog {
		products = append(products, *domain.NewProduct(
			s.name,
			s.description,
			decimal.RequireFromString(s.price),
			"/images/products/"+s.slug+".svg",
			s.category,
			s.stock,
			s.sku,
			s.slug,
		))
	}

	return products
}

// SeedCatalog заполняет каталог демонстрационными товарами, если он пуст. Возвращает число вставленных товаров.
func (p *ProductUseCase) SeedCatalog(ctx context.Context) (int, error) {
	const op = "ProductUseCase.SeedCatalog"

	inserted := 0
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		count, err := p.productRepo.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, product := range SampleCatalog() {
			if _, err := p.productRepo.Create(ctx, &product); err != nil {
				return err
			}
			inserted++
		}

		return nil
	})
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	if inserted > 0 {
		p.logger.Infof("catalog seeded with %d sample products", inserted)
	}

	return inserted, nil
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/google/uuid"
)

// ProductUseCase реализует операции каталога и владеет изменением остатков.
type ProductUseCase struct {
	productRepo ProductRepository
	txManager   TxManager
	imagesInfra ImagesInfra
	logger      logger.Logger
	cacheRepo   CacheRepository
}

func NewProductUC(
	productRepo ProductRepository,
	txManager TxManager,
	imagesInfra ImagesInfra,
	logger logger.Logger,
	cacheRepo CacheRepository,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		txManager:   txManager,
		imagesInfra: imagesInfra,
		logger:      logger,
		cacheRepo:   cacheRepo,
	}
}

// FindByID возвращает товар по id, сначала заглядывая в кэш.
// Карточка кладётся в кэш в фоне и только под версией, прочитанной до похода в БД:
// если между чтением и записью товар изменился, запись отбрасывается.
func (p *ProductUseCase) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.FindByID"

	cached, version, err := p.cacheRepo.GetProduct(ctx, id)
	cacheable := err == nil
	if err != nil {
		p.logger.Warnf("product cache lookup failed: %v", e.Wrap(op, err))
	} else if cached != nil {
		return cached, nil
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if cacheable {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := p.cacheRepo.SetProduct(bgCtx, product, version); err != nil {
				p.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return product, nil
}

func (p *ProductUseCase) FindAll(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.FindAll"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

func (p *ProductUseCase) FindByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	const op = "ProductUseCase.FindByCategory"

	products, err := p.productRepo.ListByCategory(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// SearchByName ищет товары по подстроке названия без учёта регистра.
func (p *ProductUseCase) SearchByName(ctx context.Context, query string) ([]domain.Product, error) {
	const op = "ProductUseCase.SearchByName"

	products, err := p.productRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// Create добавляет товар. Без SKU генерируется UUID, без остатка ставится 0, без slug он строится из названия.
func (p *ProductUseCase) Create(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.Create"

	if err := validateCreateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	stock := 0
	if req.StockQuantity != nil {
		stock = *req.StockQuantity
	}

	sku := uuid.NewString()
	if req.SKU != nil {
		sku = strings.TrimSpace(*req.SKU)
	}

	slug := domain.Slugify(req.Name)
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug = strings.TrimSpace(*req.Slug)
	}
	if slug == "" {
		slug = sku
	}

	product := domain.NewProduct(
		strings.TrimSpace(req.Name),
		req.Description,
		*req.Price,
		req.ImageURL,
		req.Category,
		stock,
		sku,
		slug,
	)

	created, err := p.productRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateStock перезаписывает остаток без проверок: отрицательные значения отсекаются вызывающей стороной и схемой БД.
func (p *ProductUseCase) UpdateStock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateStock"

	product, err := p.productRepo.UpdateStock(ctx, id, quantity)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, op, product.ID)

	return product, nil
}

// UploadImage сохраняет изображение в объектное хранилище и записывает его URL в товар.
// Если запись в БД не удалась, загруженный объект удаляется.
func (p *ProductUseCase) UploadImage(ctx context.Context, req *UploadProductImageReq) (*domain.Product, error) {
	const op = "ProductUseCase.UploadImage"

	product, err := p.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := p.imagesInfra.UploadProductImage(ctx, NewUploadImageReq(product.ID, product.Slug, req.Data, req.MimeType, req.Name))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, err := p.productRepo.UpdateImageURL(ctx, product.ID, res.URL)
	if err != nil {
		p.logger.Warnf("Cleaning up orphaned image after update failure. product_id: %d, error: %v", product.ID, e.Wrap(op, err))
		p.imagesInfra.CleanupImages([]string{res.Key})
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, op, updated.ID)

	return updated, nil
}

// invalidate удаляет из кэша устаревшие карточки товаров. Ошибка кэша не ломает запрос.
func (p *ProductUseCase) invalidate(ctx context.Context, op string, ids ...int64) {
	if len(ids) == 0 {
		return
	}

	if err := p.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		p.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}

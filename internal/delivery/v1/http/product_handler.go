package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
	maxImageSize   int64
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger, maxImageSize int64) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger, maxImageSize: maxImageSize}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Весь каталог или товары одной категории (точное совпадение)
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Категория"
//	@Success		200			{array}		ProductResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		products []ProductResponse
		err      error
	)
	if strings.TrimSpace(category) == "" {
		res, ucErr := p.productUsecase.FindAll(r.Context())
		products, err = toArrProductResponse(res), ucErr
	} else {
		res, ucErr := p.productUsecase.FindByCategory(r.Context(), category)
		products, err = toArrProductResponse(res), ucErr
	}
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, products)
}

// getProduct
//
//	@Summary	Товар по id
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	product, err := p.productUsecase.FindByID(r.Context(), id)
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// searchProducts
//
//	@Summary		Поиск товаров
//	@Description	Подстрока в названии без учёта регистра
//	@Tags			products
//	@Produce		json
//	@Param			q	query		string	true	"Строка поиска"
//	@Success		200	{array}		ProductResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/products/search [get]
func (p *ProductHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("q") {
		v := e.NewValidationError()
		v.Add("q", "Search query is required")
		WriteError(w, r, p.logger, v)
		return
	}

	products, err := p.productUsecase.SearchByName(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductResponse(products))
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Без sku генерируется UUID, без slug он строится из названия, без остатка ставится 0
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProductRequest	true	"Товар"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	product, err := p.productUsecase.Create(r.Context(), req.toCreateProductReq())
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	p.logger.Infof("product %d created: sku=%s", product.ID, product.SKU)
	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// updateStock
//
//	@Summary		Установка остатка
//	@Description	Перезаписывает остаток товара
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"ID товара"
//	@Param			request	body		UpdateStockRequest	true	"Новый остаток"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{id}/stock [put]
func (p *ProductHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	var req UpdateStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	if err := usecase.Validate(&req); err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	product, err := p.productUsecase.UpdateStock(r.Context(), id, *req.StockQuantity)
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// uploadImage
//
//	@Summary		Загрузка изображения товара
//	@Description	Сохраняет изображение в объектное хранилище и записывает его URL в товар
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		int		true	"ID товара"
//	@Param			image	formData	file	true	"Изображение (jpeg, png, webp, gif, svg)"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Router			/products/{id}/image [put]
func (p *ProductHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 8 << 20

	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	if p.maxImageSize > 0 {
		// запас на заголовки multipart
		r.Body = http.MaxBytesReader(w, r.Body, p.maxImageSize+(1<<20))
	}

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		WriteError(w, r, p.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		WriteError(w, r, p.logger, e.ErrNoImages)
		return
	}

	data, mimeType, err := readFile(files[0], p.maxImageSize)
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	product, err := p.productUsecase.UploadImage(r.Context(), &usecase.UploadProductImageReq{
		ProductID: id,
		Data:      data,
		MimeType:  mimeType,
		Name:      files[0].Filename,
	})
	if err != nil {
		WriteError(w, r, p.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

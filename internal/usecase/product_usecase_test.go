package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	store  *memStore
	cache  *fakeCache
	images *fakeImages
	uc     *ProductUseCase
}

func newProductFixture(products ...domain.Product) *productFixture {
	store := newMemStore(products...)
	cache := newFakeCache()
	images := &fakeImages{}

	uc := NewProductUC(
		&fakeProductRepo{store: store},
		&fakeTxManager{store: store},
		images,
		logger.NewNopLogger(),
		cache,
	)

	return &productFixture{store: store, cache: cache, images: images, uc: uc}
}

func (f *productFixture) waitCached(t *testing.T, id int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		p, _, _ := f.cache.GetProduct(context.Background(), id)
		return p != nil
	}, time.Second, 5*time.Millisecond)
}

func ptr[T any](v T) *T { return &v }

func TestProductUseCase_FindByID(t *testing.T) {
	f := newProductFixture(testProduct(1, "Widget", "10.00", 5))
	ctx := context.Background()

	p, err := f.uc.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	f.waitCached(t, 1)

	_, err = f.uc.FindByID(ctx, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrProductNotFound))
}

func TestProductUseCase_FindByID_CacheErrorFallsBackToRepo(t *testing.T) {
	f := newProductFixture(testProduct(1, "Widget", "10.00", 5))
	f.cache.getErr = errors.New("redis down")

	p, err := f.uc.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestProductUseCase_UpdateStockThenFindByID(t *testing.T) {
	f := newProductFixture(testProduct(1, "Widget", "10.00", 5))
	ctx := context.Background()

	_, err := f.uc.FindByID(ctx, 1)
	require.NoError(t, err)
	f.waitCached(t, 1)

	for _, n := range []int{0, 1, 17, 5000} {
		updated, err := f.uc.UpdateStock(ctx, 1, n)
		require.NoError(t, err)
		assert.Equal(t, n, updated.StockQuantity)

		got, err := f.uc.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, n, got.StockQuantity)
		f.waitCached(t, 1)
	}

	_, err = f.uc.UpdateStock(ctx, 99, 1)
	assert.True(t, errors.Is(err, e.ErrProductNotFound))
}

func TestProductUseCase_LateCacheWriteDoesNotOverrideStockUpdate(t *testing.T) {
	f := newProductFixture(testProduct(1, "Widget", "10.00", 5))
	f.cache.setGate = make(chan struct{})
	f.cache.setDone = make(chan bool, 1)
	ctx := context.Background()

	// Чтение со старым остатком: запись в кэш зависает до открытия шлюза
	p, err := f.uc.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)

	_, err = f.uc.UpdateStock(ctx, 1, 42)
	require.NoError(t, err)

	close(f.cache.setGate)
	assert.False(t, <-f.cache.setDone, "stale product must not be cached")

	got, err := f.uc.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 42, got.StockQuantity)
	assert.True(t, <-f.cache.setDone)

	cached, _, err := f.cache.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, 42, cached.StockQuantity)
}

func TestProductUseCase_FindByID_SkipsCacheWriteWhenLookupFails(t *testing.T) {
	f := newProductFixture(testProduct(1, "Widget", "10.00", 5))
	f.cache.getErr = errors.New("redis down")
	f.cache.setDone = make(chan bool, 1)

	_, err := f.uc.FindByID(context.Background(), 1)
	require.NoError(t, err)

	select {
	case <-f.cache.setDone:
		t.Fatal("product cached without a known version")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProductUseCase_Listing(t *testing.T) {
	shirt := testProduct(1, "Premium Cotton T-Shirt", "39.99", 200)
	shirt.Category = "Clothing"
	f := newProductFixture(
		shirt,
		testProduct(2, "Smart Watch Pro", "399.99", 75),
	)
	ctx := context.Background()

	all, err := f.uc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	clothing, err := f.uc.FindByCategory(ctx, "Clothing")
	require.NoError(t, err)
	require.Len(t, clothing, 1)
	assert.Equal(t, int64(1), clothing[0].ID)

	none, err := f.uc.FindByCategory(ctx, "Garden")
	require.NoError(t, err)
	assert.Empty(t, none)

	found, err := f.uc.SearchByName(ctx, "shirt")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Premium Cotton T-Shirt", found[0].Name)
}

func TestProductUseCase_Create(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	created, err := f.uc.Create(ctx, &CreateProductReq{
		Name:  "Desk Lamp",
		Price: ptr(decimal.RequireFromString("24.50")),
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Zero(t, created.StockQuantity)
	assert.Equal(t, "desk-lamp", created.Slug)
	_, err = uuid.Parse(created.SKU)
	assert.NoError(t, err)

	explicit, err := f.uc.Create(ctx, &CreateProductReq{
		Name:          "Desk Chair",
		Price:         ptr(decimal.RequireFromString("120")),
		StockQuantity: ptr(4),
		SKU:           ptr("HOME-100"),
		Slug:          ptr("chair"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, explicit.StockQuantity)
	assert.Equal(t, "HOME-100", explicit.SKU)
	assert.Equal(t, "chair", explicit.Slug)

	_, err = f.uc.Create(ctx, &CreateProductReq{
		Name:  "Other Chair",
		Price: ptr(decimal.RequireFromString("1")),
		SKU:   ptr("HOME-100"),
	})
	assert.True(t, errors.Is(err, e.ErrProductAlreadyExists))
}

func TestProductUseCase_CreateValidation(t *testing.T) {
	f := newProductFixture()

	tests := []struct {
		name  string
		req   *CreateProductReq
		field string
	}{
		{"blank name", &CreateProductReq{Name: " ", Price: ptr(decimal.NewFromInt(1))}, "name"},
		{"missing price", &CreateProductReq{Name: "Lamp"}, "price"},
		{"negative price", &CreateProductReq{Name: "Lamp", Price: ptr(decimal.RequireFromString("-0.01"))}, "price"},
		{"too precise price", &CreateProductReq{Name: "Lamp", Price: ptr(decimal.RequireFromString("1.999"))}, "price"},
		{"price over column limit", &CreateProductReq{Name: "Lamp", Price: ptr(decimal.RequireFromString("10000000000"))}, "price"},
		{"negative stock", &CreateProductReq{Name: "Lamp", Price: ptr(decimal.NewFromInt(1)), StockQuantity: ptr(-1)}, "stockQuantity"},
		{"blank sku", &CreateProductReq{Name: "Lamp", Price: ptr(decimal.NewFromInt(1)), SKU: ptr("")}, "sku"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), tt.req)
			v, ok := e.AsValidation(err)
			require.True(t, ok)
			assert.Contains(t, v.Fields, tt.field)
		})
	}
}

func TestProductUseCase_SeedCatalog(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	inserted, err := f.uc.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, inserted)

	inserted, err = f.uc.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	all, err := f.uc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestProductUseCase_UploadImage(t *testing.T) {
	f := newProductFixture(testProduct(1, "Widget", "10.00", 5))
	ctx := context.Background()

	updated, err := f.uc.UploadImage(ctx, &UploadProductImageReq{ProductID: 1, Data: []byte("png"), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/images/widget/image.png", updated.ImageURL)
	assert.Contains(t, f.cache.deletedIDs(), int64(1))

	f.store.failImageUpdate = errors.New("db down")
	_, err = f.uc.UploadImage(ctx, &UploadProductImageReq{ProductID: 1, Data: []byte("png"), MimeType: "image/png"})
	require.Error(t, err)
	assert.Equal(t, []string{"widget/image.png"}, f.images.cleaned)

	_, err = f.uc.UploadImage(ctx, &UploadProductImageReq{ProductID: 42})
	assert.True(t, errors.Is(err, e.ErrProductNotFound))
}

package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/pkg/e"
)

// memStore: общее in-memory хранилище для фейковых репозиториев.
// fakeTxManager снимает копию перед транзакцией и восстанавливает её при ошибке.
type memStore struct {
	mu            sync.Mutex
	products      map[int64]domain.Product
	orders        map[int64]domain.Order
	outbox        []OutboxEvent
	nextProductID int64
	nextOrderID   int64
	lockedIDs     [][]int64

	failOrderCreate error
	failImageUpdate error
}

func newMemStore(products ...domain.Product) *memStore {
	s := &memStore{
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
	}
	for _, p := range products {
		s.products[p.ID] = p
		if p.ID > s.nextProductID {
			s.nextProductID = p.ID
		}
	}
	return s
}

type snapshot struct {
	products      map[int64]domain.Product
	orders        map[int64]domain.Order
	outbox        []OutboxEvent
	nextProductID int64
	nextOrderID   int64
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[int64]domain.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	orders := make(map[int64]domain.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}

	return snapshot{
		products:      products,
		orders:        orders,
		outbox:        slices.Clone(s.outbox),
		nextProductID: s.nextProductID,
		nextOrderID:   s.nextOrderID,
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.orders = snap.orders
	s.outbox = snap.outbox
	s.nextProductID = snap.nextProductID
	s.nextOrderID = snap.nextOrderID
}

func (s *memStore) stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memStore) outboxEvents() []OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.outbox)
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// TX

type fakeTxManager struct {
	store *memStore
	calls int
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// PRODUCTS

type fakeProductRepo struct {
	store *memStore
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok {
		return nil, e.NewProductNotFound(id)
	}
	return &p, nil
}

func (f *fakeProductRepo) GetByIDsForUpdate(_ context.Context, ids []int64) (map[int64]*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	f.store.lockedIDs = append(f.store.lockedIDs, slices.Clone(ids))
	res := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := f.store.products[id]; ok {
			res[id] = &p
		}
	}
	return res, nil
}

func (f *fakeProductRepo) list(match func(domain.Product) bool) []domain.Product {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	res := make([]domain.Product, 0)
	for _, p := range f.store.products {
		if match(p) {
			res = append(res, p)
		}
	}
	slices.SortFunc(res, func(a, b domain.Product) int { return int(a.ID - b.ID) })
	return res
}

func (f *fakeProductRepo) List(context.Context) ([]domain.Product, error) {
	return f.list(func(domain.Product) bool { return true }), nil
}

func (f *fakeProductRepo) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	return f.list(func(p domain.Product) bool { return p.Category == category }), nil
}

func (f *fakeProductRepo) SearchByName(_ context.Context, query string) ([]domain.Product, error) {
	q := strings.ToLower(query)
	return f.list(func(p domain.Product) bool { return strings.Contains(strings.ToLower(p.Name), q) }), nil
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, p := range f.store.products {
		if p.SKU == product.SKU || p.Slug == product.Slug {
			return nil, e.ErrProductAlreadyExists
		}
	}

	f.store.nextProductID++
	created := *product
	created.ID = f.store.nextProductID
	f.store.products[created.ID] = created
	return &created, nil
}

func (f *fakeProductRepo) UpdateStock(_ context.Context, id int64, quantity int) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok {
		return nil, e.NewProductNotFound(id)
	}
	p.StockQuantity = quantity
	f.store.products[id] = p
	return &p, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id int64, quantity int) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok {
		return nil, e.NewProductNotFound(id)
	}
	if p.StockQuantity < quantity {
		return &p, e.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	f.store.products[id] = p
	return &p, nil
}

func (f *fakeProductRepo) UpdateImageURL(_ context.Context, id int64, imageURL string) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if f.store.failImageUpdate != nil {
		return nil, f.store.failImageUpdate
	}
	p, ok := f.store.products[id]
	if !ok {
		return nil, e.NewProductNotFound(id)
	}
	p.ImageURL = imageURL
	f.store.products[id] = p
	return &p, nil
}

func (f *fakeProductRepo) Count(context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return int64(len(f.store.products)), nil
}

// ORDERS

type fakeOrderRepo struct {
	store *memStore
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if f.store.failOrderCreate != nil {
		return nil, f.store.failOrderCreate
	}

	f.store.nextOrderID++
	created := *order
	created.ID = f.store.nextOrderID
	created.Items = slices.Clone(order.Items)
	for i := range created.Items {
		created.Items[i].ID = int64(i + 1)
	}
	f.store.orders[created.ID] = created
	return &created, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	o, ok := f.store.orders[id]
	if !ok {
		return nil, e.NewOrderNotFound(id)
	}
	return &o, nil
}

func (f *fakeOrderRepo) list(match func(domain.Order) bool) []domain.Order {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	res := make([]domain.Order, 0)
	for _, o := range f.store.orders {
		if match(o) {
			res = append(res, o)
		}
	}
	slices.SortFunc(res, func(a, b domain.Order) int { return int(a.ID - b.ID) })
	return res
}

func (f *fakeOrderRepo) ListByCustomerEmail(_ context.Context, email string) ([]domain.Order, error) {
	return f.list(func(o domain.Order) bool { return o.CustomerEmail == email }), nil
}

func (f *fakeOrderRepo) ListByStatus(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return f.list(func(o domain.Order) bool { return o.Status == status }), nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	o, ok := f.store.orders[id]
	if !ok {
		return nil, e.NewOrderNotFound(id)
	}
	o.Status = status
	f.store.orders[id] = o
	return &o, nil
}

// OUTBOX

type fakeOutboxRepo struct {
	store *memStore
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	created := *event
	created.ID = int64(len(f.store.outbox) + 1)
	f.store.outbox = append(f.store.outbox, created)
	return &created, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutboxRepo) Release(context.Context, int64) error { return nil }

// CACHE

// fakeCache повторяет контракт Redis-кэша: версии товаров и условную запись.
// Если задан setGate, SetProduct ждёт его закрытия, а по завершении пишет в setDone.
type fakeCache struct {
	mu       sync.Mutex
	items    map[int64]domain.Product
	versions map[int64]int64
	deleted  []int64
	getErr   error

	setGate chan struct{}
	setDone chan bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		items:    make(map[int64]domain.Product),
		versions: make(map[int64]int64),
	}
}

func (f *fakeCache) GetProduct(_ context.Context, id int64) (*domain.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, 0, f.getErr
	}
	p, ok := f.items[id]
	if !ok {
		return nil, f.versions[id], nil
	}
	return &p, f.versions[id], nil
}

func (f *fakeCache) SetProduct(_ context.Context, product *domain.Product, version int64) error {
	if f.setGate != nil {
		<-f.setGate
	}

	f.mu.Lock()
	stored := f.versions[product.ID] == version
	if stored {
		f.items[product.ID] = *product
	}
	f.mu.Unlock()

	if f.setDone != nil {
		f.setDone <- stored
	}
	return nil
}

func (f *fakeCache) DeleteProducts(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.versions[id]++
		delete(f.items, id)
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeCache) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deleted)
}

// IMAGES

type fakeImages struct {
	mu      sync.Mutex
	uploads []*UploadImageReq
	cleaned []string
	err     error
}

func (f *fakeImages) UploadProductImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, req)
	key := req.Slug + "/image.png"
	return NewUploadImageRes(key, "http://minio:9000/images/"+key), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

var errStoreDown = errors.New("store down")

type memSessionRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	failSet bool
	sets    int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{data: make(map[string][]byte)}
}

func (m *memSessionRepo) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errStoreDown
	}
	return m.data[sessionID+"/"+key], nil
}

func (m *memSessionRepo) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errStoreDown
	}
	m.sets++
	m.data[sessionID+"/"+key] = value
	return nil
}

func (m *memSessionRepo) put(sessionID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID+"/"+key] = []byte(value)
}

// fakeProducts — каталог в памяти, реализует ProductRepository и CatalogReader.
type fakeProducts struct {
	mu       sync.Mutex
	items    []domain.Product
	nextID   int64
	failRead bool
	lookups  [][]int64
}

func newFakeProducts(items ...domain.Product) *fakeProducts {
	f := &fakeProducts{nextID: 1}
	for _, p := range items {
		f.items = append(f.items, p)
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *product
	created.ID = f.nextID
	f.nextID++
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeProducts) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == product.ID {
			f.items[i] = *product
			updated := *product
			return &updated, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProducts) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id int64) (*domain.ProductDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return &domain.ProductDetails{Product: p}, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProducts) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, slices.Clone(ids))
	if f.failRead {
		return nil, errStoreDown
	}
	var out []domain.Product
	for _, p := range f.items {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Search(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return nil, errStoreDown
	}
	out := []domain.Product{}
	for _, p := range f.items {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.SellerID != nil && p.SellerID != *filter.SellerID {
			continue
		}
		if len(filter.Names) > 0 && !slices.Contains(filter.Names, p.Name) {
			continue
		}
		if slices.Contains(filter.ExcludeIDs, p.ID) {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Find(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	return f.Search(ctx, filter)
}

func (f *fakeProducts) ExistsByNameAndSeller(_ context.Context, name string, sellerID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Name == name && p.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

type fakeCache struct {
	mu      sync.Mutex
	items   map[int64]domain.Product
	fail    bool
	deleted []int64
	stored  chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[int64]domain.Product), stored: make(chan struct{}, 16)}
}

func (c *fakeCache) GetProducts(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errStoreDown
	}
	out := make(map[int64]domain.Product)
	for _, id := range ids {
		if p, ok := c.items[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *fakeCache) SetProducts(_ context.Context, products []domain.Product) error {
	c.mu.Lock()
	for _, p := range products {
		c.items[p.ID] = p
	}
	c.mu.Unlock()
	c.stored <- struct{}{}
	return nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, ids...)
	for _, id := range ids {
		delete(c.items, id)
	}
	return nil
}

type fakeCategories struct {
	items []domain.Category
}

func (f *fakeCategories) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	for _, c := range f.items {
		if c.Name == category.Name {
			existing := c
			return &existing, nil
		}
	}
	created := *category
	created.ID = int64(len(f.items) + 1)
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	for _, c := range f.items {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, e.ErrCategoryNotFound
}

func (f *fakeCategories) List(_ context.Context) ([]domain.Category, error) {
	return slices.Clone(f.items), nil
}

func (f *fakeCategories) Count(_ context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeSellers struct {
	items []domain.Seller
}

func (f *fakeSellers) Create(_ context.Context, seller *domain.Seller) (*domain.Seller, error) {
	for _, s := range f.items {
		if s.UserID == seller.UserID {
			existing := s
			return &existing, nil
		}
	}
	created := *seller
	created.ID = int64(len(f.items) + 1)
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeSellers) GetByUserID(_ context.Context, userID int64) (*domain.Seller, error) {
	for _, s := range f.items {
		if s.UserID == userID {
			found := s
			return &found, nil
		}
	}
	return nil, e.ErrSellerNotFound
}

type fakeUsers struct {
	items []domain.User
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range f.items {
		if u.Email == user.Email {
			return nil, e.ErrEmailTaken
		}
	}
	created := *user
	created.ID = int64(len(f.items) + 1)
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.items {
		if u.ID == id {
			found := u
			found.Roles = slices.Clone(u.Roles)
			return &found, nil
		}
	}
	return nil, e.ErrUserNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.items {
		if u.Email == email {
			found := u
			found.Roles = slices.Clone(u.Roles)
			return &found, nil
		}
	}
	return nil, e.ErrUserNotFound
}

func (f *fakeUsers) AddRole(_ context.Context, userID int64, role domain.Role) error {
	for i := range f.items {
		if f.items[i].ID == userID {
			if !slices.Contains(f.items[i].Roles, role) {
				f.items[i].Roles = append(f.items[i].Roles, role)
			}
			return nil
		}
	}
	return e.ErrUserNotFound
}

type fakeOutbox struct {
	events []*OutboxEvent
	fail   bool
}

func (f *fakeOutbox) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if f.fail {
		return nil, errStoreDown
	}
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutbox) MarkAsPending(context.Context, int64) error { return nil }

func (f *fakeOutbox) RequeueStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type fakeImages struct {
	uploaded []string
	cleaned  []string
}

func (f *fakeImages) UploadImages(_ context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	keys := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		key := "products/" + img.Name
		keys = append(keys, key)
		f.uploaded = append(f.uploaded, key)
	}
	return &UploadImagesRes{ImagesKeys: keys}, nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.cleaned = append(f.cleaned, keys...)
}

type fakeEncoder struct{}

func (fakeEncoder) EncodeProductEvent(eventID string, eventType OutboxEventType, product *domain.Product) ([]byte, error) {
	return []byte(string(eventType) + ":" + eventID), nil
}

// roleAuthorizer повторяет политику доступа по ролям.
type roleAuthorizer struct{}

func (roleAuthorizer) Can(actor domain.Actor, object, action string) (bool, error) {
	allowed := map[domain.Role][]string{
		domain.RoleAdmin:  {"products/create", "products/update_any", "products/delete_any", "dashboard/view_all"},
		domain.RoleSeller: {"products/create", "products/update_own", "products/delete_own", "dashboard/view_own"},
	}
	for _, role := range actor.Roles {
		if slices.Contains(allowed[role], object+"/"+action) {
			return true, nil
		}
	}
	return false, nil
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubTokens struct{}

func (stubTokens) Issue(user *domain.User) (string, error) {
	return "token-" + user.Email, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func product(id int64, name string, categoryID int64) domain.Product {
	return domain.Product{ID: id, Name: name, Price: 1000, CategoryID: categoryID, SellerID: 1}
}

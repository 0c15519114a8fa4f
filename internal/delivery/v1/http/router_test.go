package http

import (
	"bytes"
	"cmp"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/memory"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sessionCookie = "storefront_session"
	authCookie    = "storefront_auth"
	validToken    = "valid-token"
)

var catalogProducts = map[int64]domain.Product{
	1: {ID: 1, Name: "Smartwatch Pro", Price: 19999, Discount: 2000, CategoryID: 1, ImagePath: "/images/products/watch.png"},
	2: {ID: 2, Name: "Go Book", Price: 4500, CategoryID: 3},
	3: {ID: 3, Name: "Rust Book", Price: 5200, CategoryID: 3},
}

type fakeCatalog struct {
	lastSearch *usecase.SearchProductsReq
}

func (f *fakeCatalog) Search(_ context.Context, req *usecase.SearchProductsReq) (*usecase.CatalogPage, error) {
	f.lastSearch = req
	return &usecase.CatalogPage{
		Products:   []domain.Product{catalogProducts[1]},
		Categories: []domain.Category{{ID: 1, Name: "Electronics"}},
		Query:      strings.TrimSpace(req.Query),
		CategoryID: req.CategoryID,
	}, nil
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	var res []domain.Product
	for _, id := range ids {
		if p, ok := catalogProducts[id]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

func (f *fakeCatalog) Find(_ context.Context, filter usecase.ProductFilter) ([]domain.Product, error) {
	res := []domain.Product{}
	for _, p := range catalogProducts {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if slices.Contains(filter.ExcludeIDs, p.ID) {
			continue
		}
		if len(filter.Names) > 0 && !slices.Contains(filter.Names, p.Name) {
			continue
		}
		res = append(res, p)
	}
	slices.SortFunc(res, func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) })
	return res, nil
}

func (f *fakeCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	return []domain.Product{catalogProducts[1], catalogProducts[2]}, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*domain.ProductDetails, error) {
	p, ok := catalogProducts[id]
	if !ok {
		return nil, e.Wrap("CatalogUseCase.GetProduct", e.ErrProductNotFound)
	}
	return &domain.ProductDetails{Product: p, CategoryName: "Electronics", ShopName: "Admin Shop"}, nil
}

func (f *fakeCatalog) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Electronics"}}, nil
}

func (f *fakeCatalog) Stats(context.Context) (*usecase.CatalogStats, error) {
	return &usecase.CatalogStats{Categories: 5, Products: 12}, nil
}

type fakeProducts struct {
	created *usecase.SaveProductReq
	actor   domain.Actor
}

func (f *fakeProducts) CreateProduct(_ context.Context, actor domain.Actor, req *usecase.SaveProductReq) (*domain.Product, error) {
	f.created, f.actor = req, actor
	return &domain.Product{ID: 99, Name: req.Name, Price: req.Price, CategoryID: req.CategoryID}, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, _ domain.Actor, id int64, req *usecase.SaveProductReq) (*domain.Product, error) {
	if id != 1 {
		return nil, e.ErrProductNotFound
	}
	return &domain.Product{ID: id, Name: req.Name, Price: req.Price}, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, actor domain.Actor, _ int64) error {
	if !actor.IsAdmin() {
		return e.ErrForbidden
	}
	return nil
}

func (f *fakeProducts) Dashboard(context.Context, domain.Actor) ([]domain.Product, error) {
	return []domain.Product{catalogProducts[1]}, nil
}

type fakeAccounts struct{}

func (fakeAccounts) Register(_ context.Context, req *usecase.RegisterReq) (*usecase.AuthRes, error) {
	if req.Email == "taken@test.com" {
		return nil, e.ErrEmailTaken
	}
	return &usecase.AuthRes{Token: validToken, User: &domain.User{ID: 5, Email: req.Email, Roles: []domain.Role{domain.RoleUser}}}, nil
}

func (fakeAccounts) Login(_ context.Context, req *usecase.LoginReq) (*usecase.AuthRes, error) {
	if req.Password != "Secret1!" {
		return nil, e.ErrInvalidCredentials
	}
	return &usecase.AuthRes{Token: validToken, User: &domain.User{ID: 5, Email: req.Email}}, nil
}

func (fakeAccounts) BecomeSeller(_ context.Context, actor domain.Actor, _ *usecase.BecomeSellerReq) (*usecase.AuthRes, error) {
	return &usecase.AuthRes{Token: validToken, User: &domain.User{ID: actor.UserID, Roles: []domain.Role{domain.RoleUser, domain.RoleSeller}}}, nil
}

type fakeTokens struct{}

func (fakeTokens) Parse(token string) (domain.Actor, error) {
	if token != validToken {
		return domain.Actor{}, e.ErrInvalidToken
	}
	return domain.Actor{UserID: 1, Roles: []domain.Role{domain.RoleSeller}}, nil
}

type testEnv struct {
	handler  http.Handler
	sessions *memory.SessionRepo
	catalog  *fakeCatalog
	products *fakeProducts
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		sessions: memory.NewSessionRepo(time.Hour),
		catalog:  &fakeCatalog{},
		products: &fakeProducts{},
	}
	t.Cleanup(func() { _ = env.sessions.Close() })

	log := logger.Nop()
	mux := chi.NewRouter()
	NewRouter(mux, log).Init(&Deps{
		Cart:            usecase.NewCartUC(env.sessions, env.catalog, log),
		Favorites:       usecase.NewFavoritesUC(env.sessions, env.catalog, log),
		Recommendations: usecase.NewRecommendationUC(env.sessions, env.catalog, log),
		Status:          usecase.NewStatusUC(env.sessions, log),
		Catalog:         env.catalog,
		Products:        env.products,
		Accounts:        fakeAccounts{},
		Tokens:          fakeTokens{},
		HTTP:            &cfg.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}},
		Session:         &cfg.SessionCfg{CookieName: sessionCookie, IdleTTL: 6 * time.Hour},
		Auth:            &cfg.AuthCfg{CookieName: authCookie, TokenTTL: time.Hour},
		ImageURL:        func(path string) string { return "https://cdn.test" + path },
	})
	env.handler = mux

	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSessionCookie_IssuedAndReused(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/session/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sess := cookieFrom(t, rec, sessionCookie)
	assert.NotEmpty(t, sess.Value)
	assert.Equal(t, int((6 * time.Hour).Seconds()), sess.MaxAge)
	assert.True(t, sess.HttpOnly)

	rec = env.do(t, http.MethodGet, "/api/session/status", "", sess)
	assert.Equal(t, sess.Value, cookieFrom(t, rec, sessionCookie).Value)
}

func TestSessionCookie_InvalidValueReplaced(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/session/status", "", &http.Cookie{Name: sessionCookie, Value: "garbage"})
	assert.NotEqual(t, "garbage", cookieFrom(t, rec, sessionCookie).Value)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)
	sess := cookieFrom(t, env.do(t, http.MethodGet, "/api/session/status", ""), sessionCookie)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":1}`, sess)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[CartCountRes](t, rec).CartCount)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":1,"quantity":2}`, sess)
	assert.Equal(t, 3, decode[CartCountRes](t, rec).CartCount)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":404,"quantity":1}`, sess)
	assert.Equal(t, 4, decode[CartCountRes](t, rec).CartCount)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", "", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[CartRes](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "539.97", cart.Total)
	assert.Equal(t, "179.99", cart.Items[0].Product.FinalPrice)
	assert.Equal(t, "https://cdn.test/images/products/watch.png", cart.Items[0].Product.ImageURL)

	rec = env.do(t, http.MethodGet, "/api/session/status", "", sess)
	assert.Equal(t, domain.SessionStatus{CartCount: 4, FavCount: 0}, decode[domain.SessionStatus](t, rec))

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/1", "", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[CartCountRes](t, rec).CartCount)
}

func TestCart_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing product", `{"quantity":1}`, "invalid fields"},
		{"negative quantity", `{"productId":1,"quantity":-1}`, "Quantity (min)"},
		{"quantity above limit", `{"productId":1,"quantity":10001}`, "Quantity (max)"},
		{"negative product", `{"productId":-3}`, e.ErrInvalidProductID.Error()},
		{"malformed", `{"productId":`, e.ErrStatusBadRequest.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/cart/items", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[ErrorResponse](t, rec).Message, tt.msg)
		})
	}

	rec := env.do(t, http.MethodDelete, "/api/v1/cart/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoritesToggle(t *testing.T) {
	env := newTestEnv(t)
	sess := cookieFrom(t, env.do(t, http.MethodGet, "/api/session/status", ""), sessionCookie)

	rec := env.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"productId":2}`, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ToggleFavoriteRes{Added: true, FavCount: 1}, decode[ToggleFavoriteRes](t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/favorites", "", sess)
	favs := decode[[]ProductRes](t, rec)
	require.Len(t, favs, 1)
	assert.Equal(t, "Go Book", favs[0].Name)
	assert.Empty(t, favs[0].ImageURL)

	rec = env.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"productId":2}`, sess)
	assert.Equal(t, ToggleFavoriteRes{Added: false, FavCount: 0}, decode[ToggleFavoriteRes](t, rec))
}

func TestRecommendations(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decode[[]ProductRes](t, rec)
	require.Len(t, recs, 1)
	assert.Equal(t, "Smartwatch Pro", recs[0].Name)
}

func TestRecommendations_FromFavoriteCategory(t *testing.T) {
	env := newTestEnv(t)
	sess := cookieFrom(t, env.do(t, http.MethodGet, "/api/session/status", ""), sessionCookie)

	rec := env.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"productId":2}`, sess)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/recommendations", "", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decode[[]ProductRes](t, rec)
	require.Len(t, recs, 1)
	assert.Equal(t, "Rust Book", recs[0].Name)
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/catalog?q=%20watch%20&category=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[CatalogRes](t, rec)
	assert.Equal(t, "watch", page.Query)
	require.NotNil(t, page.CategoryID)
	assert.Equal(t, int64(1), *page.CategoryID)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, "199.99", page.Products[0].Price)

	env.do(t, http.MethodGet, "/api/v1/catalog?category=abc", "")
	assert.Nil(t, env.catalog.lastSearch.CategoryID)

	rec = env.do(t, http.MethodGet, "/api/v1/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[ProductDetailsRes](t, rec)
	assert.Equal(t, "Admin Shop", details.ShopName)
	assert.Equal(t, "Smartwatch Pro", details.Name)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/products/77", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/products/x", "").Code)

	rec = env.do(t, http.MethodGet, "/api/v1/db/status", "")
	assert.Equal(t, DBStatusRes{Status: "ok", Categories: 5, Products: 12}, decode[DBStatusRes](t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/categories", "")
	assert.Equal(t, []CategoryRes{{ID: 1, Name: "Electronics"}}, decode[[]CategoryRes](t, rec))
}

func productForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// minimalPNG — сигнатура PNG, по которой http.DetectContentType определяет тип.
var minimalPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	body, ct := productForm(t, map[string]string{
		"name":       "Lamp",
		"price":      "199.99",
		"discount":   "10",
		"quantity":   "4",
		"categoryId": "2",
	}, minimalPNG)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+validToken)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, env.products.created)
	assert.Equal(t, int64(19999), env.products.created.Price)
	assert.Equal(t, int64(1000), env.products.created.Discount)
	assert.Equal(t, 4, env.products.created.Quantity)
	assert.Equal(t, int64(2), env.products.created.CategoryID)
	require.NotNil(t, env.products.created.Image)
	assert.Equal(t, "image/png", env.products.created.Image.MimeType)
	assert.Equal(t, int64(1), env.products.actor.UserID)
}

func TestCreateProduct_Errors(t *testing.T) {
	env := newTestEnv(t)

	body, ct := productForm(t, map[string]string{"name": "Lamp", "price": "1", "categoryId": "2"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body, ct = productForm(t, map[string]string{"name": "Lamp", "price": "1.001", "categoryId": "2"}, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: validToken})
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrPricePrecision.Error(), decode[ErrorResponse](t, rec).Message)

	body, ct = productForm(t, map[string]string{"name": "Lamp", "price": "1", "categoryId": "2"}, []byte("plain text, not an image"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+validToken)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Lamp"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+validToken)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProduct_Forbidden(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccountFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/account/register", `{"email":"new@test.com","password":"Secret1!"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, validToken, cookieFrom(t, rec, authCookie).Value)
	assert.Equal(t, "new@test.com", decode[AuthRes](t, rec).User.Email)

	rec = env.do(t, http.MethodPost, "/api/v1/account/register", `{"email":"taken@test.com","password":"Secret1!"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/account/register", `{"email":"nope","password":"Secret1!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/account/login", `{"email":"new@test.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, e.ErrInvalidCredentials.Error(), decode[ErrorResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/v1/account/become-seller", `{"shopName":"Shop"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/account/become-seller", `{"shopName":"Shop"}`, &http.Cookie{Name: authCookie, Value: validToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"User", "Seller"}, decode[AuthRes](t, rec).User.Roles)

	rec = env.do(t, http.MethodPost, "/api/v1/account/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, -1, cookieFrom(t, rec, authCookie).MaxAge)
}

func TestOpsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "").Code)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
}

func TestCart_DefaultQuantityIsOne(t *testing.T) {
	env := newTestEnv(t)
	sess := cookieFrom(t, env.do(t, http.MethodGet, "/api/session/status", ""), sessionCookie)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":1}`, sess)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[CartCountRes](t, rec).CartCount)

	rec = env.do(t, http.MethodGet, "/api/session/status", "", sess)
	assert.Equal(t, domain.SessionStatus{CartCount: 1, FavCount: 0}, decode[domain.SessionStatus](t, rec))
}

func TestCart_LineLimitKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	sess := cookieFrom(t, env.do(t, http.MethodGet, "/api/session/status", ""), sessionCookie)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":2,"quantity":3}`, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":1,"quantity":10000}`, sess)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":1,"quantity":1}`, sess)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, e.ErrInvalidQuantity.Error())

	rec = env.do(t, http.MethodGet, "/api/v1/cart", "", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[CartRes](t, rec)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 10003, cart.ItemCount)
}

package http

import (
	"net/http"

	_ "github.com/DRSN-tech/storefront/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Deps — всё, что нужно обработчикам HTTP.
type Deps struct {
	Cart            usecase.CartUC
	Favorites       usecase.FavoritesUC
	Recommendations usecase.RecommendationUC
	Status          usecase.SessionStatusUC
	Catalog         usecase.CatalogUC
	Products        usecase.ProductUC
	Accounts        usecase.AccountUC
	Tokens          TokenParser

	HTTP    *cfg.HTTPConfig
	Session *cfg.SessionCfg
	Auth    *cfg.AuthCfg

	// ImageURL строит публичную ссылку на изображение товара
	ImageURL func(path string) string
}

func (r *Router) Init(d *Deps) {
	imageURL := imageURLFunc(d.ImageURL)
	if imageURL == nil {
		imageURL = func(path string) string { return path }
	}

	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	r.router.Use(MetricsMiddleware)
	r.router.Use(LoggingMiddleware(r.logger))
	if len(d.HTTP.CORSOrigins) > 0 {
		r.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.HTTP.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.router.Handle("/metrics", promhttp.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	limiter := noLimit
	if d.HTTP.RateLimitRequests > 0 {
		limiter = httprate.LimitByIP(d.HTTP.RateLimitRequests, d.HTTP.RateLimitWindow)
	}

	sessionHandler := NewSessionHandler(d.Status, d.Recommendations, imageURL, r.logger)
	cartHandler := NewCartHandler(d.Cart, imageURL, r.logger)
	favHandler := NewFavoritesHandler(d.Favorites, imageURL, r.logger)
	catalogHandler := NewCatalogHandler(d.Catalog, imageURL, r.logger)
	productHandler := NewProductHandler(d.Products, imageURL, r.logger)
	accountHandler := NewAccountHandler(d.Accounts, d.Auth, d.Session.CookieSecure, r.logger)

	r.router.Route("/api", func(api chi.Router) {
		api.Use(SessionMiddleware(d.Session))
		api.Use(AuthMiddleware(d.Tokens, d.Auth.CookieName))

		api.Get("/session/status", sessionHandler.status)

		api.Route("/v1", func(v1 chi.Router) {
			registerCatalogRoutes(v1, catalogHandler)
			registerProductRoutes(v1, productHandler)
			registerCartRoutes(v1, cartHandler, limiter)
			registerFavoritesRoutes(v1, favHandler, limiter)
			registerAccountRoutes(v1, accountHandler, limiter)
			v1.Get("/recommendations", sessionHandler.recommendations)
		})
	})
}

func noLimit(next http.Handler) http.Handler { return next }

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Get("/catalog", h.catalog)
	router.Get("/categories", h.categories)
	router.Get("/products", h.products)
	router.Get("/products/{id}", h.product)
	router.Get("/db/status", h.dbStatus)
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Group(func(auth chi.Router) {
		auth.Use(RequireAuth)
		auth.Post("/products", h.createProduct)
		auth.Put("/products/{id}", h.updateProduct)
		auth.Delete("/products/{id}", h.deleteProduct)
		auth.Get("/dashboard/products", h.dashboard)
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler, limiter func(http.Handler) http.Handler) {
	router.Route("/cart", func(cart chi.Router) {
		cart.Get("/", h.getCart)
		cart.With(limiter).Post("/items", h.addItem)
		cart.With(limiter).Delete("/items/{productId}", h.removeItem)
	})
}

func registerFavoritesRoutes(router chi.Router, h *FavoritesHandler, limiter func(http.Handler) http.Handler) {
	router.Route("/favorites", func(fav chi.Router) {
		fav.Get("/", h.getFavorites)
		fav.With(limiter).Post("/toggle", h.toggle)
	})
}

func registerAccountRoutes(router chi.Router, h *AccountHandler, limiter func(http.Handler) http.Handler) {
	router.Route("/account", func(acc chi.Router) {
		acc.Use(limiter)
		acc.Post("/register", h.register)
		acc.Post("/login", h.login)
		acc.Post("/logout", h.logout)
		acc.With(RequireAuth).Post("/become-seller", h.becomeSeller)
	})
}

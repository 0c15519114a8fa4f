package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CartUC interface {
	AddToCart(ctx context.Context, sess Session, productID int64, quantity int) (int, error)
	RemoveFromCart(ctx context.Context, sess Session, productID int64) error
	GetCartView(ctx context.Context, sess Session) ([]domain.CartLine, error)
	CartCount(ctx context.Context, sess Session) int
}

type FavoritesUC interface {
	ToggleFavorite(ctx context.Context, sess Session, productID int64) (*ToggleFavoriteRes, error)
	GetFavorites(ctx context.Context, sess Session) ([]domain.Product, error)
	FavoriteIDs(ctx context.Context, sess Session) []int64
}

type RecommendationUC interface {
	Recommend(ctx context.Context, sess Session) ([]domain.Product, error)
}

type SessionStatusUC interface {
	Status(ctx context.Context, sess Session) domain.SessionStatus
}

type CatalogUC interface {
	Search(ctx context.Context, req *SearchProductsReq) (*CatalogPage, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.ProductDetails, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Stats(ctx context.Context) (*CatalogStats, error)
}

type ProductUC interface {
	CreateProduct(ctx context.Context, actor domain.Actor, req *SaveProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor domain.Actor, id int64, req *SaveProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor domain.Actor, id int64) error
	Dashboard(ctx context.Context, actor domain.Actor) ([]domain.Product, error)
}

type AccountUC interface {
	Register(ctx context.Context, req *RegisterReq) (*AuthRes, error)
	Login(ctx context.Context, req *LoginReq) (*AuthRes, error)
	BecomeSeller(ctx context.Context, actor domain.Actor, req *BecomeSellerReq) (*AuthRes, error)
}

// CatalogReader — возможности каталога, которые нужны корзине, избранному и рекомендациям.
// Отсутствующие id молча пропускаются.
type CatalogReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// SessionRepository хранит сериализованные данные сессии по паре (id сессии, ключ).
// Get возвращает nil без ошибки, если значения нет.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string, key string) ([]byte, error)
	Set(ctx context.Context, sessionID string, key string, value []byte) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.ProductDetails, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	ExistsByNameAndSeller(ctx context.Context, name string, sellerID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Count(ctx context.Context) (int64, error)
}

type SellerRepository interface {
	Create(ctx context.Context, seller *domain.Seller) (*domain.Seller, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Seller, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	AddRole(ctx context.Context, userID int64, role domain.Role) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// TxManager выполняет fn в одной транзакции; репозитории берут её из контекста.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

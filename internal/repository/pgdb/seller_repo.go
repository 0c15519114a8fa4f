package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// SellerRepo реализует репозиторий магазинов продавцов поверх PostgreSQL.
type SellerRepo struct {
	pool *pgxpool.Pool
	conv converter.SellerConverter
}

func NewSellerRepo(pool *pgxpool.Pool, conv converter.SellerConverter) *SellerRepo {
	return &SellerRepo{pool: pool, conv: conv}
}

// Create идемпотентно создаёт магазин пользователя; у пользователя не больше одного магазина.
func (s *SellerRepo) Create(ctx context.Context, seller *domain.Seller) (*domain.Seller, error) {
	query := `
		WITH ins AS (
			INSERT INTO sellers (user_id, shop_name, description) VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING id, user_id, shop_name, description, rating, created_at
		)
		SELECT id, user_id, shop_name, description, rating, created_at FROM ins
		UNION ALL
		SELECT id, user_id, shop_name, description, rating, created_at FROM sellers
		WHERE user_id = $1 AND NOT EXISTS (SELECT 1 FROM ins);
	`

	var model converter.SellerModel
	if err := executorFrom(ctx, s.pool).QueryRow(ctx, query, seller.UserID, seller.ShopName, seller.Description).
		Scan(&model.ID, &model.UserID, &model.ShopName, &model.Description, &model.Rating, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), nil
}

func (s *SellerRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Seller, error) {
	query := `
		SELECT id, user_id, shop_name, description, rating, created_at
		FROM sellers WHERE user_id = $1
	`

	var model converter.SellerModel
	if err := executorFrom(ctx, s.pool).QueryRow(ctx, query, userID).
		Scan(&model.ID, &model.UserID, &model.ShopName, &model.Description, &model.Rating, &model.CreatedAt); err != nil {
		if noRows(err) {
			return nil, e.ErrSellerNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), nil
}

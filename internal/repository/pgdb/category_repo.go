package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// Create идемпотентно создаёт категорию по имени; при дубликате возвращает существующую.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		WITH ins AS (
			INSERT INTO categories (name, parent_category_id) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING id, name, parent_category_id, created_at
		)
		SELECT id, name, parent_category_id, created_at FROM ins
		UNION ALL
		SELECT id, name, parent_category_id, created_at FROM categories
		WHERE name = $1 AND NOT EXISTS (SELECT 1 FROM ins);
	`

	var model converter.CategoryModel
	if err := executorFrom(ctx, c.pool).QueryRow(ctx, query, category.Name, category.ParentCategoryID).
		Scan(&model.ID, &model.Name, &model.ParentCategoryID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name, parent_category_id, created_at FROM categories WHERE id = $1`

	var model converter.CategoryModel
	if err := executorFrom(ctx, c.pool).QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Name, &model.ParentCategoryID, &model.CreatedAt); err != nil {
		if noRows(err) {
			return nil, e.ErrCategoryNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

// List возвращает все категории, упорядоченные по id.
func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, parent_category_id, created_at FROM categories ORDER BY id`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(&model.ID, &model.Name, &model.ParentCategoryID, &model.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (c *CategoryRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}

package pgdb

import (
	"context"
	"slices"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

var productColumns = []string{
	"p.id", "p.name", "p.description", "p.price", "p.discount", "p.quantity", "p.image_path",
	"p.category_id", "p.seller_id", "p.rating", "p.reviews_count", "p.is_approved",
	"p.created_at", "p.updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)

	query := `
		INSERT INTO products (
			name, description, price, discount, quantity, image_path,
			category_id, seller_id, rating, reviews_count, is_approved
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at;
	`

	if err := executorFrom(ctx, p.pool).QueryRow(ctx, query,
		model.Name, model.Description, model.Price, model.Discount, model.Quantity, model.ImagePath,
		model.CategoryID, model.SellerID, model.Rating, model.ReviewsCount, model.IsApproved,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)

	query := `
		UPDATE products SET
			name = $2, description = $3, price = $4, discount = $5, quantity = $6,
			image_path = $7, category_id = $8, is_approved = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING seller_id, rating, reviews_count, created_at, updated_at;
	`

	if err := executorFrom(ctx, p.pool).QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Price, model.Discount, model.Quantity,
		model.ImagePath, model.CategoryID, model.IsApproved,
	).Scan(&model.SellerID, &model.Rating, &model.ReviewsCount, &model.CreatedAt, &model.UpdatedAt); err != nil {
		if noRows(err) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// Delete удаляет товар и сообщает, существовал ли он.
func (p *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := executorFrom(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByID возвращает товар вместе с названием категории и магазина.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.ProductDetails, error) {
	query, args, err := psql.
		Select(slices.Concat(productColumns, []string{"c.name", "s.shop_name"})...).
		From("products p").
		Join("categories c ON c.id = p.category_id").
		Join("sellers s ON s.id = p.seller_id").
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var (
		model   converter.ProductModel
		details domain.ProductDetails
	)
	dest := append(scanTargets(&model), &details.CategoryName, &details.ShopName)
	if err := executorFrom(ctx, p.pool).QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		if noRows(err) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	details.Product = *p.conv.ToEntity(&model)

	return &details, nil
}

// GetByIDs возвращает найденные товары; отсутствующие id пропускаются.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query, args, err := psql.
		Select(productColumns...).
		From("products p").
		Where("p.id = ANY(?)", ids).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.query(ctx, query, args)
}

// Search выбирает товары по фильтру, упорядочивая по id.
func (p *ProductRepo) Search(ctx context.Context, filter usecase.ProductFilter) ([]domain.Product, error) {
	query, args, err := buildSearchQuery(filter)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.query(ctx, query, args)
}

func (p *ProductRepo) ExistsByNameAndSeller(ctx context.Context, name string, sellerID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND seller_id = $2)`
	if err := executorFrom(ctx, p.pool).QueryRow(ctx, query, name, sellerID).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}
	return exists, nil
}

func (p *ProductRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}

func (p *ProductRepo) query(ctx context.Context, query string, args []any) ([]domain.Product, error) {
	rows, err := executorFrom(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (converter.ProductModel, error) {
		var model converter.ProductModel
		err := row.Scan(scanTargets(&model)...)
		return model, err
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

// buildSearchQuery строит SELECT по фильтру. Текстовый поиск — ILIKE по названию
// или описанию с экранированием спецсимволов шаблона.
func buildSearchQuery(filter usecase.ProductFilter) (string, []any, error) {
	q := psql.Select(productColumns...).From("products p")

	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		q = q.Where(sq.Or{
			sq.ILike{"p.name": pattern},
			sq.ILike{"p.description": pattern},
		})
	}

	if filter.CategoryID != nil {
		q = q.Where(sq.Eq{"p.category_id": *filter.CategoryID})
	}

	if filter.SellerID != nil {
		q = q.Where(sq.Eq{"p.seller_id": *filter.SellerID})
	}

	if len(filter.Names) > 0 {
		q = q.Where(sq.Eq{"p.name": filter.Names})
	}

	if len(filter.ExcludeIDs) > 0 {
		q = q.Where(sq.NotEq{"p.id": filter.ExcludeIDs})
	}

	return q.OrderBy("p.id").ToSql()
}

func scanTargets(m *converter.ProductModel) []any {
	return []any{
		&m.ID, &m.Name, &m.Description, &m.Price, &m.Discount, &m.Quantity, &m.ImagePath,
		&m.CategoryID, &m.SellerID, &m.Rating, &m.ReviewsCount, &m.IsApproved,
		&m.CreatedAt, &m.UpdatedAt,
	}
}

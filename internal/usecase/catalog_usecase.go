package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const cacheWriteTimeout = 500 * time.Millisecond

// CatalogUseCase — чтение каталога: поиск, карточка товара, категории и выборка по id с кэшем.
type CatalogUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cacheRepo    CacheRepository
	logger       logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
	}
}

// Search ищет товары по подстроке в названии или описании без учёта регистра
// и по категории. Неположительная категория не учитывается.
func (c *CatalogUseCase) Search(ctx context.Context, req *SearchProductsReq) (*CatalogPage, error) {
	const op = "CatalogUseCase.Search"

	filter := ProductFilter{Query: strings.TrimSpace(req.Query)}
	if req.CategoryID != nil && *req.CategoryID > 0 {
		filter.CategoryID = req.CategoryID
	}

	products, err := c.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &CatalogPage{
		Products:   products,
		Categories: categories,
		Query:      filter.Query,
		CategoryID: filter.CategoryID,
	}, nil
}

func (c *CatalogUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.ListProducts"

	products, err := c.productRepo.Search(ctx, ProductFilter{})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

func (c *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*domain.ProductDetails, error) {
	const op = "CatalogUseCase.GetProduct"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidProductID)
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

// Stats возвращает число категорий и товаров; используется для проверки подключения к БД.
func (c *CatalogUseCase) Stats(ctx context.Context) (*CatalogStats, error) {
	const op = "CatalogUseCase.Stats"

	categories, err := c.categoryRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := c.productRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &CatalogStats{Categories: categories, Products: products}, nil
}

func (c *CatalogUseCase) Find(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	const op = "CatalogUseCase.Find"

	products, err := c.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// GetByIDs возвращает товары в порядке ids; отсутствующие id пропускаются.
// Сначала товары ищутся в кэше, недостающие читаются из БД и кэшируются в фоне.
func (c *CatalogUseCase) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	const op = "CatalogUseCase.GetByIDs"

	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	cached, err := c.cacheRepo.GetProducts(ctx, ids)
	if err != nil {
		c.logger.Warnf("Product cache lookup failed: %v", e.Wrap(op, err))
		cached = nil
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	var fromDB []domain.Product
	if len(missing) > 0 {
		fromDB, err = c.productRepo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		if len(fromDB) > 0 {
			// Фоновое добавление товаров в кэш
			go func(products []domain.Product) {
				bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
				defer cancel()

				if err := c.cacheRepo.SetProducts(bgCtx, products); err != nil {
					c.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
				}
			}(fromDB)
		}
	}

	dbProducts := indexProducts(fromDB)

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := cached[id]; ok {
			result = append(result, p)
		} else if p, ok := dbProducts[id]; ok {
			result = append(result, p)
		}
	}

	return result, nil
}

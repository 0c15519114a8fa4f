package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/metrics"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// MaxCartQuantity — предельное количество единиц одного товара в корзине.
const MaxCartQuantity = 10000

// CartUseCase собирает корзину покупателя из данных сессии и каталога.
type CartUseCase struct {
	state   *sessionState
	catalog CatalogReader
	logger  logger.Logger
}

func NewCartUC(sessionRepo SessionRepository, catalog CatalogReader, logger logger.Logger) *CartUseCase {
	return &CartUseCase{
		state:   newSessionState(sessionRepo, logger),
		catalog: catalog,
		logger:  logger,
	}
}

// AddToCart увеличивает количество товара в корзине или добавляет новую позицию.
// Возвращает общее число единиц товара в корзине.
func (c *CartUseCase) AddToCart(ctx context.Context, sess Session, productID int64, quantity int) (int, error) {
	const op = "CartUseCase.AddToCart"

	if productID <= 0 {
		return 0, e.Wrap(op, e.ErrInvalidProductID)
	}
	if quantity <= 0 || quantity > MaxCartQuantity {
		return 0, e.Wrap(op, e.ErrInvalidQuantity)
	}

	items := c.state.loadCart(ctx, sess)

	found := false
	for i := range items {
		if items[i].ProductID == productID {
			if items[i].Quantity > MaxCartQuantity-quantity {
				return 0, e.Wrap(op, e.ErrInvalidQuantity)
			}
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.SessionCartItem{ProductID: productID, Quantity: quantity})
	}

	c.state.saveCart(ctx, sess, items)
	metrics.RecordCartMutation("add")

	return totalQuantity(items), nil
}

// RemoveFromCart удаляет позицию товара. Отсутствие позиции не считается ошибкой.
func (c *CartUseCase) RemoveFromCart(ctx context.Context, sess Session, productID int64) error {
	const op = "CartUseCase.RemoveFromCart"

	if productID <= 0 {
		return e.Wrap(op, e.ErrInvalidProductID)
	}

	items := c.state.loadCart(ctx, sess)

	kept := make([]domain.SessionCartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if len(kept) == len(items) {
		return nil
	}

	c.state.saveCart(ctx, sess, kept)
	metrics.RecordCartMutation("remove")

	return nil
}

// GetCartView сопоставляет позиции корзины с товарами каталога в порядке добавления.
// Позиции, для которых товара больше нет, пропускаются.
func (c *CartUseCase) GetCartView(ctx context.Context, sess Session) ([]domain.CartLine, error) {
	const op = "CartUseCase.GetCartView"

	items := c.state.loadCart(ctx, sess)
	if len(items) == 0 {
		return []domain.CartLine{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := c.catalog.GetByIDs(ctx, ids)
	if err != nil {
		c.logger.Warnf("Catalog lookup for cart failed, returning empty view: %v", e.Wrap(op, err))
		return []domain.CartLine{}, nil
	}

	byID := indexProducts(products)

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{Product: product, Quantity: item.Quantity})
	}

	return lines, nil
}

// CartCount возвращает сумму количеств всех позиций корзины.
func (c *CartUseCase) CartCount(ctx context.Context, sess Session) int {
	return totalQuantity(c.state.loadCart(ctx, sess))
}

func totalQuantity(items []domain.SessionCartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func indexProducts(products []domain.Product) map[int64]domain.Product {
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/metrics"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// FavoritesUseCase управляет избранным покупателя, хранящимся в сессии.
type FavoritesUseCase struct {
	state   *sessionState
	catalog CatalogReader
	logger  logger.Logger
}

func NewFavoritesUC(sessionRepo SessionRepository, catalog CatalogReader, logger logger.Logger) *FavoritesUseCase {
	return &FavoritesUseCase{
		state:   newSessionState(sessionRepo, logger),
		catalog: catalog,
		logger:  logger,
	}
}

// ToggleFavorite добавляет товар в избранное, если его там нет, и удаляет в противном случае.
func (f *FavoritesUseCase) ToggleFavorite(ctx context.Context, sess Session, productID int64) (*ToggleFavoriteRes, error) {
	const op = "FavoritesUseCase.ToggleFavorite"

	if productID <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidProductID)
	}

	ids := f.state.loadFavorites(ctx, sess)

	next := make([]int64, 0, len(ids)+1)
	removed := false
	for _, id := range ids {
		if id == productID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, productID)
	}

	f.state.saveFavorites(ctx, sess, next)
	metrics.RecordFavoriteToggle(!removed)

	return &ToggleFavoriteRes{Count: len(next), Added: !removed}, nil
}

// GetFavorites возвращает избранные товары в порядке добавления, пропуская удалённые из каталога.
func (f *FavoritesUseCase) GetFavorites(ctx context.Context, sess Session) ([]domain.Product, error) {
	const op = "FavoritesUseCase.GetFavorites"

	ids := f.state.loadFavorites(ctx, sess)
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	products, err := f.catalog.GetByIDs(ctx, ids)
	if err != nil {
		f.logger.Warnf("Catalog lookup for favorites failed, returning empty list: %v", e.Wrap(op, err))
		return []domain.Product{}, nil
	}

	byID := indexProducts(products)

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			result = append(result, product)
		}
	}

	return result, nil
}

func (f *FavoritesUseCase) FavoriteIDs(ctx context.Context, sess Session) []int64 {
	ids := f.state.loadFavorites(ctx, sess)
	if ids == nil {
		return []int64{}
	}
	return ids
}

package usecase

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// RecommendationLimit — максимальное число рекомендуемых товаров.
const RecommendationLimit = 6

// RecommendationUseCase подбирает товары по избранному покупателя.
// Каждый вызов пересчитывает результат полностью.
type RecommendationUseCase struct {
	state     *sessionState
	catalog   CatalogReader
	seedNames []string
	logger    logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

type RecommendationOption func(*RecommendationUseCase)

// WithRand задаёт источник случайности для перемешивания.
func WithRand(rnd *rand.Rand) RecommendationOption {
	return func(r *RecommendationUseCase) {
		r.rnd = rnd
	}
}

// WithSeedNames заменяет список демонстрационных товаров.
func WithSeedNames(names []string) RecommendationOption {
	return func(r *RecommendationUseCase) {
		r.seedNames = names
	}
}

func NewRecommendationUC(sessionRepo SessionRepository, catalog CatalogReader, logger logger.Logger, opts ...RecommendationOption) *RecommendationUseCase {
	r := &RecommendationUseCase{
		state:     newSessionState(sessionRepo, logger),
		catalog:   catalog,
		seedNames: DemoProductNames(),
		logger:    logger,
		rnd:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Recommend возвращает до RecommendationLimit товаров.
// При непустом избранном это товары самой частой категории избранного, иначе
// случайная выборка из демонстрационных товаров или всего каталога.
func (r *RecommendationUseCase) Recommend(ctx context.Context, sess Session) ([]domain.Product, error) {
	favIDs := r.state.loadFavorites(ctx, sess)

	if len(favIDs) > 0 {
		if products, ok := r.byFavoriteCategory(ctx, favIDs); ok {
			return products, nil
		}
	}

	return r.sample(ctx), nil
}

// byFavoriteCategory возвращает false, если ни один избранный товар не найден в каталоге.
func (r *RecommendationUseCase) byFavoriteCategory(ctx context.Context, favIDs []int64) ([]domain.Product, bool) {
	const op = "RecommendationUseCase.byFavoriteCategory"

	favorites, err := r.catalog.GetByIDs(ctx, favIDs)
	if err != nil {
		r.logger.Warnf("Failed to resolve favorites: %v", e.Wrap(op, err))
		return nil, false
	}
	if len(favorites) == 0 {
		return nil, false
	}

	categoryID := topCategory(favorites)

	products, err := r.catalog.Find(ctx, ProductFilter{
		CategoryID: &categoryID,
		ExcludeIDs: favIDs,
	})
	if err != nil {
		r.logger.Warnf("Failed to load products of category %d: %v", categoryID, e.Wrap(op, err))
		return []domain.Product{}, true
	}

	return capProducts(excludeProducts(products, favIDs)), true
}

func (r *RecommendationUseCase) sample(ctx context.Context) []domain.Product {
	const op = "RecommendationUseCase.sample"

	if len(r.seedNames) > 0 {
		seeded, err := r.catalog.Find(ctx, ProductFilter{Names: r.seedNames})
		if err != nil {
			r.logger.Warnf("Failed to load demo products: %v", e.Wrap(op, err))
		} else if len(seeded) > 0 {
			return capProducts(r.shuffle(seeded))
		}
	}

	all, err := r.catalog.Find(ctx, ProductFilter{})
	if err != nil {
		r.logger.Warnf("Failed to load catalog: %v", e.Wrap(op, err))
		return []domain.Product{}
	}

	return capProducts(r.shuffle(all))
}

// shuffle перемешивает копию среза алгоритмом Фишера-Йетса.
func (r *RecommendationUseCase) shuffle(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	r.mu.Lock()
	r.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	r.mu.Unlock()

	return out
}

// topCategory выбирает категорию с наибольшим числом избранных товаров,
// при равенстве побеждает меньший id.
func topCategory(favorites []domain.Product) int64 {
	counts := make(map[int64]int, len(favorites))
	for _, p := range favorites {
		counts[p.CategoryID]++
	}

	var (
		best      int64
		bestCount int
	)
	for categoryID, count := range counts {
		if count > bestCount || (count == bestCount && categoryID < best) {
			best, bestCount = categoryID, count
		}
	}

	return best
}

func excludeProducts(products []domain.Product, ids []int64) []domain.Product {
	skip := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := skip[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func capProducts(products []domain.Product) []domain.Product {
	if len(products) > RecommendationLimit {
		return products[:RecommendationLimit]
	}
	if products == nil {
		return []domain.Product{}
	}
	return products
}

package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecommender(repo *memSessionRepo, catalog *fakeProducts, opts ...RecommendationOption) *RecommendationUseCase {
	opts = append([]RecommendationOption{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewRecommendationUC(repo, catalog, nopLogger{}, opts...)
}

func assertDistinct(t *testing.T, products []domain.Product) {
	t.Helper()
	seen := make(map[int64]bool, len(products))
	for _, p := range products {
		assert.False(t, seen[p.ID], "product %d repeated", p.ID)
		seen[p.ID] = true
	}
}

func TestRecommend_SingleFavoriteCategory(t *testing.T) {
	var items []domain.Product
	for i := int64(1); i <= 10; i++ {
		items = append(items, product(i, fmt.Sprintf("Book %d", i), 3))
	}
	items = append(items, product(11, "Toy", 5), product(12, "Toy 2", 5))

	repo := newMemSessionRepo()
	repo.put("s1", domain.SessionFavoritesKey, `[2,4]`)

	got, err := newRecommender(repo, newFakeProducts(items...)).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)

	require.Len(t, got, RecommendationLimit)
	for _, p := range got {
		assert.Equal(t, int64(3), p.CategoryID)
		assert.NotContains(t, []int64{2, 4}, p.ID)
	}
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assertDistinct(t, got)
}

func TestRecommend_MostFrequentCategoryWins(t *testing.T) {
	catalog := newFakeProducts(
		product(1, "E1", 1), product(2, "E2", 1), product(3, "E3", 1),
		product(4, "B1", 2), product(5, "B2", 2), product(6, "B3", 2),
	)
	repo := newMemSessionRepo()
	repo.put("s1", domain.SessionFavoritesKey, `[1,4,5]`)

	got, err := newRecommender(repo, catalog).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(6), got[0].ID)
}

func TestRecommend_TieBreaksOnLowestCategory(t *testing.T) {
	catalog := newFakeProducts(
		product(1, "A1", 9), product(2, "A2", 9),
		product(3, "B1", 4), product(4, "B2", 4),
	)
	repo := newMemSessionRepo()
	repo.put("s1", domain.SessionFavoritesKey, `[1,3]`)

	got, err := newRecommender(repo, catalog).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].ID)
}

func TestRecommend_EmptyFavoritesPrefersDemoProducts(t *testing.T) {
	catalog := newFakeProducts(
		product(1, "Notebook Alpha", 1),
		product(2, "Blender 500W", 2),
		product(3, "Custom Widget", 1),
	)

	got, err := newRecommender(newMemSessionRepo(), catalog).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assertDistinct(t, got)
	for _, p := range got {
		assert.NotEqual(t, "Custom Widget", p.Name)
	}
}

func TestRecommend_FallsBackToWholeCatalog(t *testing.T) {
	var items []domain.Product
	for i := int64(1); i <= 9; i++ {
		items = append(items, product(i, fmt.Sprintf("Item %d", i), i%3+1))
	}

	got, err := newRecommender(newMemSessionRepo(), newFakeProducts(items...)).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)

	assert.Len(t, got, RecommendationLimit)
	assertDistinct(t, got)
}

func TestRecommend_EmptyCatalogReturnsEmptyList(t *testing.T) {
	got, err := newRecommender(newMemSessionRepo(), newFakeProducts()).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommend_UnresolvableFavoritesUseSampling(t *testing.T) {
	catalog := newFakeProducts(product(1, "Smartwatch Pro", 1))
	repo := newMemSessionRepo()
	repo.put("s1", domain.SessionFavoritesKey, `[77]`)

	got, err := newRecommender(repo, catalog).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Smartwatch Pro", got[0].Name)
}

func TestRecommend_CatalogFailureDegradesToEmpty(t *testing.T) {
	catalog := newFakeProducts(product(1, "A", 1))
	catalog.failRead = true

	got, err := newRecommender(newMemSessionRepo(), catalog).Recommend(context.Background(), NewSession("s1"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTopCategory(t *testing.T) {
	assert.Equal(t, int64(2), topCategory([]domain.Product{product(1, "", 5), product(2, "", 2), product(3, "", 2)}))
	assert.Equal(t, int64(3), topCategory([]domain.Product{product(1, "", 8), product(2, "", 3)}))
}

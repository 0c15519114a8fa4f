package usecase

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/goccy/go-json"
)

// sessionState читает и пишет корзину и избранное в хранилище сессий.
// Любая ошибка чтения или повреждённые данные дают пустое состояние,
// ошибки записи только логируются.
type sessionState struct {
	repo   SessionRepository
	logger logger.Logger
}

func newSessionState(repo SessionRepository, logger logger.Logger) *sessionState {
	return &sessionState{repo: repo, logger: logger}
}

func (s *sessionState) loadCart(ctx context.Context, sess Session) []domain.SessionCartItem {
	const op = "sessionState.loadCart"

	data, ok := s.read(ctx, sess, domain.SessionCartKey)
	if !ok {
		return nil
	}

	items, err := decodeCart(data)
	if err != nil {
		s.logger.Warnf("Discarding cart of session %s: %v", sess.ID, e.Wrap(op, err))
		return nil
	}

	return items
}

func (s *sessionState) saveCart(ctx context.Context, sess Session, items []domain.SessionCartItem) {
	const op = "sessionState.saveCart"

	if items == nil {
		items = []domain.SessionCartItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Errorf(e.Wrap(op, err), "Failed to encode cart of session %s", sess.ID)
		return
	}

	s.write(ctx, sess, domain.SessionCartKey, data)
}

func (s *sessionState) loadFavorites(ctx context.Context, sess Session) []int64 {
	const op = "sessionState.loadFavorites"

	data, ok := s.read(ctx, sess, domain.SessionFavoritesKey)
	if !ok {
		return nil
	}

	ids, err := decodeFavorites(data)
	if err != nil {
		s.logger.Warnf("Discarding favorites of session %s: %v", sess.ID, e.Wrap(op, err))
		return nil
	}

	return ids
}

func (s *sessionState) saveFavorites(ctx context.Context, sess Session, ids []int64) {
	const op = "sessionState.saveFavorites"

	if ids == nil {
		ids = []int64{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		s.logger.Errorf(e.Wrap(op, err), "Failed to encode favorites of session %s", sess.ID)
		return
	}

	s.write(ctx, sess, domain.SessionFavoritesKey, data)
}

func (s *sessionState) read(ctx context.Context, sess Session, key string) ([]byte, bool) {
	const op = "sessionState.read"

	if sess.ID == "" {
		return nil, false
	}

	data, err := s.repo.Get(ctx, sess.ID, key)
	if err != nil {
		s.logger.Warnf("Session %s key %s read failed, using empty state: %v", sess.ID, key, e.Wrap(op, err))
		return nil, false
	}

	if len(data) == 0 {
		return nil, false
	}

	return data, true
}

func (s *sessionState) write(ctx context.Context, sess Session, key string, data []byte) {
	const op = "sessionState.write"

	if sess.ID == "" {
		return
	}

	if err := s.repo.Set(ctx, sess.ID, key, data); err != nil {
		s.logger.Warnf("Session %s key %s write failed: %v", sess.ID, key, e.Wrap(op, err))
	}
}

// decodeCart разбирает корзину целиком: одна неверная позиция или повтор id
// делает невалидным весь список.
func decodeCart(data []byte) ([]domain.SessionCartItem, error) {
	var items []domain.SessionCartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrMalformedSession, err)
	}

	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.ProductID <= 0 || item.Quantity <= 0 || item.Quantity > MaxCartQuantity {
			return nil, e.ErrMalformedSession
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, e.ErrMalformedSession
		}
		seen[item.ProductID] = struct{}{}
	}

	return items, nil
}

func decodeFavorites(data []byte) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrMalformedSession, err)
	}

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, e.ErrMalformedSession
		}
		if _, dup := seen[id]; dup {
			return nil, e.ErrMalformedSession
		}
		seen[id] = struct{}{}
	}

	return ids, nil
}

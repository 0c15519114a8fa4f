package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// StatusUseCase считает счётчики корзины и избранного для шапки сайта.
type StatusUseCase struct {
	state *sessionState
}

func NewStatusUC(sessionRepo SessionRepository, logger logger.Logger) *StatusUseCase {
	return &StatusUseCase{state: newSessionState(sessionRepo, logger)}
}

func (s *StatusUseCase) Status(ctx context.Context, sess Session) domain.SessionStatus {
	return domain.SessionStatus{
		CartCount: totalQuantity(s.state.loadCart(ctx, sess)),
		FavCount:  len(s.state.loadFavorites(ctx, sess)),
	}
}

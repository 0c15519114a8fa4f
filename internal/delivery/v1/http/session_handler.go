package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type SessionHandler struct {
	statusUC usecase.SessionStatusUC
	recUC    usecase.RecommendationUC
	imageURL imageURLFunc
	logger   logger.Logger
}

func NewSessionHandler(statusUC usecase.SessionStatusUC, recUC usecase.RecommendationUC, imageURL imageURLFunc, logger logger.Logger) *SessionHandler {
	return &SessionHandler{statusUC: statusUC, recUC: recUC, imageURL: imageURL, logger: logger}
}

// status
//
//	@Summary		Счётчики корзины и избранного
//	@Description	Количество товаров в корзине (сумма количеств) и размер избранного для текущей сессии
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	domain.SessionStatus
//	@Router			/session/status [get]
func (s *SessionHandler) status(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, s.statusUC.Status(r.Context(), sessionFrom(r.Context())))
}

// recommendations
//
//	@Summary		Рекомендации
//	@Description	До шести товаров из самой частой категории избранного, иначе случайная подборка
//	@Tags			session
//	@Produce		json
//	@Success		200	{array}		ProductRes
//	@Router			/v1/recommendations [get]
func (s *SessionHandler) recommendations(w http.ResponseWriter, r *http.Request) {
	products, err := s.recUC.Recommend(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductRes(products, s.imageURL))
}

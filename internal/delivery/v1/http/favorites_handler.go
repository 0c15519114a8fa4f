package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type FavoritesHandler struct {
	favUC    usecase.FavoritesUC
	imageURL imageURLFunc
	logger   logger.Logger
}

func NewFavoritesHandler(favUC usecase.FavoritesUC, imageURL imageURLFunc, logger logger.Logger) *FavoritesHandler {
	return &FavoritesHandler{favUC: favUC, imageURL: imageURL, logger: logger}
}

// getFavorites
//
//	@Summary		Избранное
//	@Tags			favorites
//	@Produce		json
//	@Success		200	{array}	ProductRes
//	@Router			/v1/favorites [get]
func (f *FavoritesHandler) getFavorites(w http.ResponseWriter, r *http.Request) {
	products, err := f.favUC.GetFavorites(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		f.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductRes(products, f.imageURL))
}

// toggle
//
//	@Summary		Переключить товар в избранном
//	@Description	Добавляет товар, если его нет, иначе удаляет
//	@Tags			favorites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ToggleFavoriteReq	true	"Товар"
//	@Success		200		{object}	ToggleFavoriteRes
//	@Failure		400		{object}	ErrorResponse
//	@Router			/v1/favorites/toggle [post]
func (f *FavoritesHandler) toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleFavoriteReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := f.favUC.ToggleFavorite(r.Context(), sessionFrom(r.Context()), req.ProductID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ToggleFavoriteRes{Added: res.Added, FavCount: res.Count})
}

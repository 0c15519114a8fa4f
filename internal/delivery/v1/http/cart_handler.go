package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartUC   usecase.CartUC
	imageURL imageURLFunc
	logger   logger.Logger
}

func NewCartHandler(cartUC usecase.CartUC, imageURL imageURLFunc, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUC: cartUC, imageURL: imageURL, logger: logger}
}

// getCart
//
//	@Summary		Корзина
//	@Description	Позиции корзины текущей сессии; удалённые из каталога товары пропускаются
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	CartRes
//	@Router			/v1/cart [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	lines, err := c.cartUC.GetCartView(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartRes(lines, c.imageURL))
}

// addItem
//
//	@Summary		Добавить товар в корзину
//	@Description	Создаёт позицию или увеличивает количество; quantity по умолчанию 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AddToCartReq	true	"Товар и количество"
//	@Success		200		{object}	CartCountRes
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/v1/cart/items [post]
func (c *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddToCartReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	count, err := c.cartUC.AddToCart(r.Context(), sessionFrom(r.Context()), req.ProductID, quantity)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CartCountRes{CartCount: count})
}

// removeItem
//
//	@Summary		Удалить товар из корзины
//	@Tags			cart
//	@Produce		json
//	@Param			productId	path		int	true	"ID товара"
//	@Success		200			{object}	CartCountRes
//	@Failure		400			{object}	ErrorResponse
//	@Router			/v1/cart/items/{productId} [delete]
func (c *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrInvalidProductID)
		return
	}

	sess := sessionFrom(r.Context())
	if err := c.cartUC.RemoveFromCart(r.Context(), sess, productID); err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CartCountRes{CartCount: c.cartUC.CartCount(r.Context(), sess)})
}

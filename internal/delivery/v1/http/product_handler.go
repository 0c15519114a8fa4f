package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productUC usecase.ProductUC
	imageURL  imageURLFunc
	logger    logger.Logger
}

func NewProductHandler(productUC usecase.ProductUC, imageURL imageURLFunc, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUC: productUC, imageURL: imageURL, logger: logger}
}

const (
	maxTotalRequestSize = 20 << 20
	maxMemory           = 8 << 20
)

// createProduct
//
//	@Summary		Создание товара
//	@Description	Создаёт товар в магазине текущего продавца, изображение необязательно
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			name		formData	string	true	"Название товара"
//	@Param			description	formData	string	false	"Описание"
//	@Param			price		formData	number	true	"Цена в рублях"
//	@Param			discount	formData	number	false	"Скидка в рублях"
//	@Param			quantity	formData	int		false	"Остаток"
//	@Param			categoryId	formData	int		true	"ID категории"
//	@Param			isApproved	formData	bool	false	"Опубликовать (только администратор)"
//	@Param			image		formData	file	false	"Изображение товара"
//	@Success		201			{object}	ProductRes
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		403			{object}	ErrorResponse
//	@Router			/v1/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	req, err := p.parseForm(w, r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUC.CreateProduct(r.Context(), actorFrom(r.Context()), req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductRes(product, p.imageURL))
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Description	Администратор меняет любой товар, продавец только свой
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		int		true	"ID товара"
//	@Param			name		formData	string	true	"Название товара"
//	@Param			price		formData	number	true	"Цена в рублях"
//	@Param			categoryId	formData	int		true	"ID категории"
//	@Success		200			{object}	ProductRes
//	@Failure		403			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/v1/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrInvalidProductID)
		return
	}

	req, err := p.parseForm(w, r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUC.UpdateProduct(r.Context(), actorFrom(r.Context()), id, req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductRes(product, p.imageURL))
}

// deleteProduct
//
//	@Summary		Удаление товара
//	@Tags			products
//	@Security		BearerAuth
//	@Param			id	path	int	true	"ID товара"
//	@Success		204
//	@Failure		403	{object}	ErrorResponse
//	@Router			/v1/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrInvalidProductID)
		return
	}

	if err := p.productUC.DeleteProduct(r.Context(), actorFrom(r.Context()), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// dashboard
//
//	@Summary		Товары в кабинете
//	@Description	Администратор видит все товары, продавец только свои
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	ProductRes
//	@Router			/v1/dashboard/products [get]
func (p *ProductHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUC.Dashboard(r.Context(), actorFrom(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductRes(products, p.imageURL))
}

// parseForm разбирает multipart-форму товара. Цены приходят в рублях и переводятся в копейки.
func (p *ProductHandler) parseForm(w http.ResponseWriter, r *http.Request) (*usecase.SaveProductReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(r.FormValue("name"))
	priceStr := r.FormValue("price")
	categoryStr := r.FormValue("categoryId")
	if name == "" || priceStr == "" || categoryStr == "" {
		return nil, e.Wrap("name, price and categoryId are required", e.ErrMissingFields)
	}

	price, err := parsePriceToCents(priceStr)
	if err != nil {
		return nil, err
	}

	var discount int64
	if s := r.FormValue("discount"); s != "" {
		if discount, err = parsePriceToCents(s); err != nil {
			return nil, err
		}
	}

	var quantity int
	if s := r.FormValue("quantity"); s != "" {
		if quantity, err = strconv.Atoi(s); err != nil {
			return nil, e.Wrap("quantity", e.ErrStatusBadRequest)
		}
	}

	categoryID, err := strconv.ParseInt(categoryStr, 10, 64)
	if err != nil {
		return nil, e.ErrInvalidCategoryID
	}

	isApproved, _ := strconv.ParseBool(r.FormValue("isApproved"))

	image, err := parseImage(r.MultipartForm)
	if err != nil {
		return nil, err
	}

	return &usecase.SaveProductReq{
		Name:        name,
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		Discount:    discount,
		Quantity:    quantity,
		CategoryID:  categoryID,
		IsApproved:  isApproved,
		Image:       image,
	}, nil
}

package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUC usecase.CatalogUC
	imageURL  imageURLFunc
	logger    logger.Logger
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, imageURL imageURLFunc, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, imageURL: imageURL, logger: logger}
}

// catalog
//
//	@Summary		Поиск по каталогу
//	@Description	Подстрока в названии или описании без учёта регистра и фильтр по категории
//	@Tags			catalog
//	@Produce		json
//	@Param			q			query		string	false	"Строка поиска"
//	@Param			category	query		int		false	"ID категории"
//	@Success		200			{object}	CatalogRes
//	@Router			/v1/catalog [get]
func (c *CatalogHandler) catalog(w http.ResponseWriter, r *http.Request) {
	req := &usecase.SearchProductsReq{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			req.CategoryID = &id
		}
	}

	page, err := c.catalogUC.Search(r.Context(), req)
	if err != nil {
		c.logger.Errorf(err, "catalog search failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CatalogRes{
		Products:   toArrProductRes(page.Products, c.imageURL),
		Categories: toArrCategoryRes(page.Categories),
		Query:      page.Query,
		CategoryID: page.CategoryID,
	})
}

// categories
//
//	@Summary		Список категорий
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}	CategoryRes
//	@Router			/v1/categories [get]
func (c *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalogUC.ListCategories(r.Context())
	if err != nil {
		c.logger.Errorf(err, "list categories failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrCategoryRes(categories))
}

// products
//
//	@Summary		Все товары каталога
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}	ProductRes
//	@Router			/v1/products [get]
func (c *CatalogHandler) products(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalogUC.ListProducts(r.Context())
	if err != nil {
		c.logger.Errorf(err, "list products failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductRes(products, c.imageURL))
}

// product
//
//	@Summary		Карточка товара
//	@Tags			catalog
//	@Produce		json
//	@Param			id	path		int	true	"ID товара"
//	@Success		200	{object}	ProductDetailsRes
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/products/{id} [get]
func (c *CatalogHandler) product(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrInvalidProductID)
		return
	}

	details, err := c.catalogUC.GetProduct(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ProductDetailsRes{
		ProductRes:   toProductRes(&details.Product, c.imageURL),
		CategoryName: details.CategoryName,
		ShopName:     details.ShopName,
	})
}

// dbStatus
//
//	@Summary		Состояние базы
//	@Description	Число категорий и товаров
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	DBStatusRes
//	@Router			/v1/db/status [get]
func (c *CatalogHandler) dbStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := c.catalogUC.Stats(r.Context())
	if err != nil {
		c.logger.Errorf(err, "db status failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, DBStatusRes{
		Status:     "ok",
		Categories: stats.Categories,
		Products:   stats.Products,
	})
}

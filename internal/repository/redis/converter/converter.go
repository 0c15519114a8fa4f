package converter

import "github.com/DRSN-tech/storefront/internal/domain"

// ProductConverter преобразует товары между domain и моделью кэша.
type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.Product
	ToArrRedisModel(entities []domain.Product) []ProductRedisModel
}

type ProductConv struct{}

func NewProductConv() *ProductConv {
	return &ProductConv{}
}

func (ProductConv) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Description:  entity.Description,
		Price:        entity.Price,
		Discount:     entity.Discount,
		Quantity:     entity.Quantity,
		ImagePath:    entity.ImagePath,
		CategoryID:   entity.CategoryID,
		SellerID:     entity.SellerID,
		Rating:       entity.Rating,
		ReviewsCount: entity.ReviewsCount,
		IsApproved:   entity.IsApproved,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func (ProductConv) ToEntity(model *ProductRedisModel) *domain.Product {
	return &domain.Product{
		ID:           model.ID,
		Name:         model.Name,
		Description:  model.Description,
		Price:        model.Price,
		Discount:     model.Discount,
		Quantity:     model.Quantity,
		ImagePath:    model.ImagePath,
		CategoryID:   model.CategoryID,
		SellerID:     model.SellerID,
		Rating:       model.Rating,
		ReviewsCount: model.ReviewsCount,
		IsApproved:   model.IsApproved,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func (c ProductConv) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	out := make([]ProductRedisModel, 0, len(entities))
	for i := range entities {
		out = append(out, *c.ToRedisModel(&entities[i]))
	}
	return out
}

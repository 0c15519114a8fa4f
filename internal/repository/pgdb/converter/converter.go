package converter

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []ProductModel) []domain.Product
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToEntity(model *CategoryModel) *domain.Category
}

type SellerConverter interface {
	ToEntity(model *SellerModel) *domain.Seller
}

type UserConverter interface {
	ToEntity(model *UserModel) *domain.User
	RolesToModel(roles []domain.Role) []string
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

// Converter реализует все преобразователи слоя PostgreSQL.
type Converter struct{}

func New() *Converter {
	return &Converter{}
}

func (Converter) productModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
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

func (Converter) productEntity(model *ProductModel) *domain.Product {
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

// ProductConv возвращает Converter как ProductConverter.
func (c *Converter) ProductConv() ProductConverter { return productConv{c} }

func (c *Converter) CategoryConv() CategoryConverter { return categoryConv{c} }

func (c *Converter) SellerConv() SellerConverter { return sellerConv{c} }

func (c *Converter) UserConv() UserConverter { return userConv{c} }

func (c *Converter) OutboxConv() OutboxEventConverter { return outboxConv{c} }

type productConv struct{ *Converter }

func (p productConv) ToModel(entity *domain.Product) *ProductModel { return p.productModel(entity) }

func (p productConv) ToEntity(model *ProductModel) *domain.Product { return p.productEntity(model) }

func (p productConv) ToArrEntity(models []ProductModel) []domain.Product {
	out := make([]domain.Product, 0, len(models))
	for i := range models {
		out = append(out, *p.productEntity(&models[i]))
	}
	return out
}

type categoryConv struct{ *Converter }

func (categoryConv) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:               model.ID,
		Name:             model.Name,
		ParentCategoryID: model.ParentCategoryID,
	}
}

type sellerConv struct{ *Converter }

func (sellerConv) ToEntity(model *SellerModel) *domain.Seller {
	return &domain.Seller{
		ID:          model.ID,
		UserID:      model.UserID,
		ShopName:    model.ShopName,
		Description: model.Description,
		Rating:      model.Rating,
		CreatedAt:   model.CreatedAt,
	}
}

type userConv struct{ *Converter }

func (userConv) ToEntity(model *UserModel) *domain.User {
	roles := make([]domain.Role, 0, len(model.Roles))
	for _, r := range model.Roles {
		roles = append(roles, domain.Role(r))
	}

	return &domain.User{
		ID:           model.ID,
		Email:        model.Email,
		FullName:     model.FullName,
		PasswordHash: model.PasswordHash,
		Roles:        roles,
		CreatedAt:    model.CreatedAt,
	}
}

func (userConv) RolesToModel(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

type outboxConv struct{ *Converter }

func (outboxConv) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (outboxConv) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (o outboxConv) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, o.ToEntity(m))
	}
	return out
}

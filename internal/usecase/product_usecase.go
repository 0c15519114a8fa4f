package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// Объект и действия политики доступа к товарам.
const (
	ObjectProducts  = "products"
	ObjectDashboard = "dashboard"

	ActionCreate    = "create"
	ActionUpdateAny = "update_any"
	ActionUpdateOwn = "update_own"
	ActionDeleteAny = "delete_any"
	ActionDeleteOwn = "delete_own"
	ActionViewAll   = "view_all"
	ActionViewOwn   = "view_own"
)

// ProductUseCase реализует управление товарами продавцами и администраторами.
type ProductUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	sellerRepo   SellerRepository
	outboxRepo   OutboxRepository
	cacheRepo    CacheRepository
	imagesInfra  ImagesInfra
	encoder      EventEncoder
	authorizer   Authorizer
	txManager    TxManager
	logger       logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	sellerRepo SellerRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	encoder EventEncoder,
	authorizer Authorizer,
	txManager TxManager,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		sellerRepo:   sellerRepo,
		outboxRepo:   outboxRepo,
		cacheRepo:    cacheRepo,
		imagesInfra:  imagesInfra,
		encoder:      encoder,
		authorizer:   authorizer,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateProduct создаёт товар в магазине текущего продавца.
// Только администратор может сразу опубликовать товар.
func (p *ProductUseCase) CreateProduct(ctx context.Context, actor domain.Actor, req *SaveProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.authorize(actor, ObjectProducts, ActionCreate); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	seller, err := p.sellerOf(ctx, actor)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if _, err := p.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := domain.NewProduct(strings.TrimSpace(req.Name), req.Description, req.Price, req.Discount, req.Quantity, req.CategoryID, seller.ID)
	if actor.IsAdmin() {
		product.IsApproved = req.IsApproved
	}

	uploadedKey, err := p.uploadImage(ctx, product.Name, req.Image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if uploadedKey != "" {
		product.ImagePath = uploadedKey
	}

	var created *domain.Product
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductCreated, created)
	})
	if err != nil {
		p.cleanup(op, product.Name, uploadedKey, err)
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateProduct изменяет товар. Продавец может менять только свои товары,
// флаг публикации меняет только администратор.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, actor domain.Actor, id int64, req *SaveProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidProductID)
	}

	existing, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.authorizeOwned(ctx, actor, &existing.Product, ActionUpdateAny, ActionUpdateOwn); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.CategoryID != existing.CategoryID {
		if _, err := p.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	product := existing.Product
	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Price = req.Price
	product.Discount = req.Discount
	product.Quantity = req.Quantity
	product.CategoryID = req.CategoryID
	if actor.IsAdmin() {
		product.IsApproved = req.IsApproved
	}

	uploadedKey, err := p.uploadImage(ctx, product.Name, req.Image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if uploadedKey != "" {
		product.ImagePath = uploadedKey
	}

	var updated *domain.Product
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = p.productRepo.Update(ctx, &product)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductUpdated, updated)
	})
	if err != nil {
		p.cleanup(op, product.Name, uploadedKey, err)
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, op, id)

	if uploadedKey != "" && isObjectKey(existing.ImagePath) {
		p.imagesInfra.CleanupImages([]string{existing.ImagePath})
	}

	return updated, nil
}

// DeleteProduct удаляет товар. Удаление несуществующего товара не считается ошибкой.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, actor domain.Actor, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	if id <= 0 {
		return e.Wrap(op, e.ErrInvalidProductID)
	}

	existing, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			return nil
		}
		return e.Wrap(op, err)
	}

	if err := p.authorizeOwned(ctx, actor, &existing.Product, ActionDeleteAny, ActionDeleteOwn); err != nil {
		return e.Wrap(op, err)
	}

	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		deleted, err := p.productRepo.Delete(ctx, id)
		if err != nil || !deleted {
			return err
		}

		return p.writeEvent(ctx, ProductDeleted, &existing.Product)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, op, id)

	if isObjectKey(existing.ImagePath) {
		p.imagesInfra.CleanupImages([]string{existing.ImagePath})
	}

	return nil
}

// Dashboard возвращает все товары для администратора и только свои для продавца.
func (p *ProductUseCase) Dashboard(ctx context.Context, actor domain.Actor) ([]domain.Product, error) {
	const op = "ProductUseCase.Dashboard"

	if p.can(actor, ObjectDashboard, ActionViewAll) {
		products, err := p.productRepo.Search(ctx, ProductFilter{})
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		return products, nil
	}

	if !p.can(actor, ObjectDashboard, ActionViewOwn) {
		return nil, e.Wrap(op, e.ErrForbidden)
	}

	seller, err := p.sellerOf(ctx, actor)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := p.productRepo.Search(ctx, ProductFilter{SellerID: &seller.ID})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

func (p *ProductUseCase) can(actor domain.Actor, object, action string) bool {
	const op = "ProductUseCase.can"

	ok, err := p.authorizer.Can(actor, object, action)
	if err != nil {
		p.logger.Errorf(e.Wrap(op, err), "Authorization check failed for %s/%s", object, action)
		return false
	}
	return ok
}

func (p *ProductUseCase) authorize(actor domain.Actor, object, action string) error {
	if actor.UserID <= 0 {
		return e.ErrUnauthorized
	}
	if !p.can(actor, object, action) {
		return e.ErrForbidden
	}
	return nil
}

// authorizeOwned пропускает, если роль может менять любой товар, либо может менять свои и товар принадлежит её магазину.
func (p *ProductUseCase) authorizeOwned(ctx context.Context, actor domain.Actor, product *domain.Product, anyAction, ownAction string) error {
	if actor.UserID <= 0 {
		return e.ErrUnauthorized
	}

	if p.can(actor, ObjectProducts, anyAction) {
		return nil
	}

	if !p.can(actor, ObjectProducts, ownAction) {
		return e.ErrForbidden
	}

	seller, err := p.sellerOf(ctx, actor)
	if err != nil {
		return err
	}

	if seller.ID != product.SellerID {
		return e.ErrForbidden
	}

	return nil
}

func (p *ProductUseCase) sellerOf(ctx context.Context, actor domain.Actor) (*domain.Seller, error) {
	seller, err := p.sellerRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, e.ErrSellerNotFound) {
			return nil, e.ErrNotSeller
		}
		return nil, err
	}
	return seller, nil
}

func (p *ProductUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, product *domain.Product) error {
	eventID := newEventID()

	payload, err := p.encoder.EncodeProductEvent(eventID, eventType, product)
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, NewOutboxEvent(eventID, eventType, product.ID, payload))
	return err
}

// uploadImage сохраняет изображение в MinIO и возвращает ключ объекта или пустую строку, если изображения нет.
func (p *ProductUseCase) uploadImage(ctx context.Context, name string, image *ProductImage) (string, error) {
	if image == nil {
		return "", nil
	}

	res, err := p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(name, []ProductImage{*image}))
	if err != nil {
		return "", err
	}

	if len(res.ImagesKeys) == 0 {
		return "", nil
	}

	return res.ImagesKeys[0], nil
}

func (p *ProductUseCase) cleanup(op, name, key string, cause error) {
	if key == "" {
		return
	}

	p.logger.Warnf(
		"Cleaning up orphaned image after transaction failure. product_name: %s, error: %v",
		name,
		e.Wrap(op, cause),
	)

	p.imagesInfra.CleanupImages([]string{key})
}

// invalidate удаляет товар из кэша; ошибка не влияет на результат операции.
func (p *ProductUseCase) invalidate(ctx context.Context, op string, id int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}

// validateProduct проверяет корректность полей товара.
func validateProduct(req *SaveProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Discount < 0 || req.Discount > req.Price {
		return e.ErrInvalidDiscount
	}

	if req.Quantity < 0 {
		return e.ErrNegativeStock
	}

	if req.CategoryID <= 0 {
		return e.ErrInvalidCategoryID
	}

	return nil
}

// isObjectKey отличает загруженные в MinIO изображения от статических путей демо-данных.
func isObjectKey(path string) bool {
	return path != "" && !strings.HasPrefix(path, "/")
}

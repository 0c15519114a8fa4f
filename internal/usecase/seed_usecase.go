package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// SeedAccounts — учётные данные администратора и тестового продавца.
type SeedAccounts struct {
	AdminEmail     string
	AdminPassword  string
	SellerEmail    string
	SellerPassword string
}

// SeedUseCase идемпотентно наполняет пустую базу категориями, учётными записями и демо-товарами.
// Вызывается один раз при старте процесса.
type SeedUseCase struct {
	categoryRepo CategoryRepository
	userRepo     UserRepository
	sellerRepo   SellerRepository
	productRepo  ProductRepository
	hasher       PasswordHasher
	txManager    TxManager
	accounts     SeedAccounts
	logger       logger.Logger
}

func NewSeedUC(
	categoryRepo CategoryRepository,
	userRepo UserRepository,
	sellerRepo SellerRepository,
	productRepo ProductRepository,
	hasher PasswordHasher,
	txManager TxManager,
	accounts SeedAccounts,
	logger logger.Logger,
) *SeedUseCase {
	return &SeedUseCase{
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		sellerRepo:   sellerRepo,
		productRepo:  productRepo,
		hasher:       hasher,
		txManager:    txManager,
		accounts:     accounts,
		logger:       logger,
	}
}

// Seed создаёт недостающие данные. Повторный вызов ничего не меняет.
func (s *SeedUseCase) Seed(ctx context.Context) error {
	const op = "SeedUseCase.Seed"

	var created int
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		categories := make(map[string]int64, len(demoCategories))
		for _, name := range demoCategories {
			category, err := s.categoryRepo.Create(ctx, domain.NewCategory(name))
			if err != nil {
				return err
			}
			categories[name] = category.ID
		}

		adminSeller, err := s.ensureSeller(ctx, s.accounts.AdminEmail, s.accounts.AdminPassword, domain.RoleAdmin, "Admin Shop", "Seeded admin seller")
		if err != nil {
			return err
		}

		testSeller, err := s.ensureSeller(ctx, s.accounts.SellerEmail, s.accounts.SellerPassword, domain.RoleSeller, "Test Seller Shop", "Seeded test seller")
		if err != nil {
			return err
		}

		owners := map[demoOwner]int64{
			adminShop:  adminSeller.ID,
			sellerShop: testSeller.ID,
		}

		for _, demo := range demoProducts {
			sellerID := owners[demo.owner]

			exists, err := s.productRepo.ExistsByNameAndSeller(ctx, demo.name, sellerID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			product := domain.NewProduct(demo.name, demo.description, demo.price, 0, demo.quantity, categories[demo.category], sellerID)
			product.ImagePath = demo.imagePath
			product.IsApproved = true

			if _, err := s.productRepo.Create(ctx, product); err != nil {
				return err
			}
			created++
		}

		return nil
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	s.logger.Infof("Seed completed, %d demo products created", created)

	return nil
}

// ensureSeller находит или создаёт пользователя с ролью и привязанный к нему магазин.
func (s *SeedUseCase) ensureSeller(ctx context.Context, email, password string, role domain.Role, shopName, description string) (*domain.Seller, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, e.ErrUserNotFound):
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}

		user, err = s.userRepo.Create(ctx, domain.NewUser(email, "", hash, role))
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !user.HasRole(role):
		if err := s.userRepo.AddRole(ctx, user.ID, role); err != nil {
			return nil, err
		}
	}

	return s.sellerRepo.Create(ctx, domain.NewSeller(user.ID, shopName, description))
}

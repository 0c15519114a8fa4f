package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const minPasswordLength = 6

// AccountUseCase — регистрация, вход и получение роли продавца.
type AccountUseCase struct {
	userRepo   UserRepository
	sellerRepo SellerRepository
	hasher     PasswordHasher
	tokens     TokenIssuer
	txManager  TxManager
	logger     logger.Logger
}

func NewAccountUC(
	userRepo UserRepository,
	sellerRepo SellerRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	txManager TxManager,
	logger logger.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		userRepo:   userRepo,
		sellerRepo: sellerRepo,
		hasher:     hasher,
		tokens:     tokens,
		txManager:  txManager,
		logger:     logger,
	}
}

// Register создаёт покупателя с ролью User и сразу выдаёт токен.
func (a *AccountUseCase) Register(ctx context.Context, req *RegisterReq) (*AuthRes, error) {
	const op = "AccountUseCase.Register"

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, e.Wrap(op, e.ErrInvalidEmail)
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, e.Wrap(op, err)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := a.userRepo.Create(ctx, domain.NewUser(email, strings.TrimSpace(req.FullName), hash, domain.RoleUser))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("User registered: id=%d", user.ID)

	return a.issue(op, user)
}

// Login проверяет пару email/пароль. Неизвестный email и неверный пароль неразличимы для клиента.
func (a *AccountUseCase) Login(ctx context.Context, req *LoginReq) (*AuthRes, error) {
	const op = "AccountUseCase.Login"

	user, err := a.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if err := a.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	return a.issue(op, user)
}

// BecomeSeller добавляет пользователю роль Seller и создаёт магазин.
// Повторный вызов возвращает новый токен без изменений.
func (a *AccountUseCase) BecomeSeller(ctx context.Context, actor domain.Actor, req *BecomeSellerReq) (*AuthRes, error) {
	const op = "AccountUseCase.BecomeSeller"

	if actor.UserID <= 0 {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	shopName := strings.TrimSpace(req.ShopName)
	if shopName == "" {
		return nil, e.Wrap(op, e.ErrShopNameRequired)
	}

	var user *domain.User
	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		user, err = a.userRepo.GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}

		if !user.HasRole(domain.RoleSeller) {
			if err := a.userRepo.AddRole(ctx, user.ID, domain.RoleSeller); err != nil {
				return err
			}
			user.Roles = append(user.Roles, domain.RoleSeller)
		}

		_, err = a.sellerRepo.Create(ctx, domain.NewSeller(user.ID, shopName, strings.TrimSpace(req.Description)))
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return a.issue(op, user)
}

func (a *AccountUseCase) issue(op string, user *domain.User) (*AuthRes, error) {
	token, err := a.tokens.Issue(user)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &AuthRes{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword требует минимум 6 символов, заглавную и строчную буквы, цифру и спецсимвол.
func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return e.ErrWeakPassword
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}

	if !upper || !lower || !digit || !symbol {
		return e.ErrWeakPassword
	}

	return nil
}

package auth

import (
	"errors"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher хэширует пароли bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (b *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}
	return string(hash), nil
}

// Compare возвращает e.ErrInvalidCredentials, если пароль не совпадает с хэшем.
func (b *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return e.ErrInvalidCredentials
	}
	return e.Wrap(whereami.WhereAmI(), err)
}

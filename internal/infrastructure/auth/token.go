package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jimlawless/whereami"
)

// Claims — полезная нагрузка токена доступа.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет JWT (HS256).
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenManager(cfg *cfg.AuthCfg) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("JWT secret is empty"))
	}

	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

func (t *TokenManager) Issue(user *domain.User) (string, error) {
	now := t.now()

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	claims := &Claims{
		Email: user.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return signed, nil
}

// Parse проверяет подпись и срок действия токена. Любая ошибка сводится к e.ErrInvalidToken.
func (t *TokenManager) Parse(token string) (domain.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", e.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Actor{}, e.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Actor{}, e.ErrInvalidToken
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, role := range claims.Roles {
		roles = append(roles, domain.Role(role))
	}

	return domain.Actor{
		UserID: userID,
		Email:  claims.Email,
		Roles:  roles,
	}, nil
}

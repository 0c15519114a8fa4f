package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const userSelect = `
	SELECT u.id, u.email, u.full_name, u.password_hash, u.created_at,
		COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}') AS roles
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id
`

// UserRepo реализует репозиторий пользователей и их ролей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{pool: pool, conv: conv}
}

// Create вставляет пользователя вместе с ролями одним запросом.
// Занятый email возвращает e.ErrEmailTaken.
func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		WITH ins AS (
			INSERT INTO users (email, full_name, password_hash) VALUES ($1, $2, $3)
			ON CONFLICT (email) DO NOTHING
			RETURNING id, email, full_name, password_hash, created_at
		), roles AS (
			INSERT INTO user_roles (user_id, role)
			SELECT ins.id, unnest($4::text[]) FROM ins
		)
		SELECT id, email, full_name, password_hash, created_at FROM ins;
	`

	roles := u.conv.RolesToModel(user.Roles)

	var model converter.UserModel
	if err := executorFrom(ctx, u.pool).QueryRow(ctx, query, user.Email, user.FullName, user.PasswordHash, roles).
		Scan(&model.ID, &model.Email, &model.FullName, &model.PasswordHash, &model.CreatedAt); err != nil {
		if noRows(err) || postgresDuplicate(err) {
			return nil, e.ErrEmailTaken
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	model.Roles = roles

	return u.conv.ToEntity(&model), nil
}

func (u *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return u.getOne(ctx, userSelect+` WHERE u.id = $1 GROUP BY u.id`, id)
}

func (u *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.getOne(ctx, userSelect+` WHERE u.email = $1 GROUP BY u.id`, email)
}

// AddRole добавляет роль пользователю; повторное добавление ничего не меняет.
func (u *UserRepo) AddRole(ctx context.Context, userID int64, role domain.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`

	if _, err := executorFrom(ctx, u.pool).Exec(ctx, query, userID, string(role)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (u *UserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var model converter.UserModel
	if err := executorFrom(ctx, u.pool).QueryRow(ctx, query, arg).
		Scan(&model.ID, &model.Email, &model.FullName, &model.PasswordHash, &model.CreatedAt, &model.Roles); err != nil {
		if noRows(err) {
			return nil, e.ErrUserNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&model), nil
}

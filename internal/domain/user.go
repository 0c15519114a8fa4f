package domain

import (
	"slices"
	"time"
)

// Role — роль учётной записи.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleSeller Role = "Seller"
	RoleUser   Role = "User"
)

// User описывает учётную запись покупателя, продавца или администратора
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

func NewUser(email string, fullName string, passwordHash string, roles ...Role) *User {
	return &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Roles:        roles,
	}
}

// HasRole проверяет наличие роли у пользователя.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// Actor — аутентифицированный пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID int64
	Email  string
	Roles  []Role
}

func (a Actor) HasRole(role Role) bool {
	return slices.Contains(a.Roles, role)
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

package authz

import (
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer_Can(t *testing.T) {
	enf, err := NewEnforcer()
	require.NoError(t, err)

	admin := domain.Actor{UserID: 1, Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}}
	seller := domain.Actor{UserID: 2, Roles: []domain.Role{domain.RoleUser, domain.RoleSeller}}
	buyer := domain.Actor{UserID: 3, Roles: []domain.Role{domain.RoleUser}}
	anonymous := domain.Actor{}

	tests := []struct {
		name   string
		actor  domain.Actor
		object string
		action string
		want   bool
	}{
		{"seller creates", seller, usecase.ObjectProducts, usecase.ActionCreate, true},
		{"seller updates own", seller, usecase.ObjectProducts, usecase.ActionUpdateOwn, true},
		{"seller cannot update any", seller, usecase.ObjectProducts, usecase.ActionUpdateAny, false},
		{"seller cannot delete any", seller, usecase.ObjectProducts, usecase.ActionDeleteAny, false},
		{"seller sees own dashboard", seller, usecase.ObjectDashboard, usecase.ActionViewOwn, true},
		{"seller cannot see all", seller, usecase.ObjectDashboard, usecase.ActionViewAll, false},
		{"admin inherits create", admin, usecase.ObjectProducts, usecase.ActionCreate, true},
		{"admin updates any", admin, usecase.ObjectProducts, usecase.ActionUpdateAny, true},
		{"admin deletes any", admin, usecase.ObjectProducts, usecase.ActionDeleteAny, true},
		{"admin sees all", admin, usecase.ObjectDashboard, usecase.ActionViewAll, true},
		{"buyer cannot create", buyer, usecase.ObjectProducts, usecase.ActionCreate, false},
		{"anonymous denied", anonymous, usecase.ObjectProducts, usecase.ActionCreate, false},
		{"unknown object", admin, "orders", usecase.ActionViewAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enf.Can(tt.actor, tt.object, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPolicy_Malformed(t *testing.T) {
	enf, err := NewEnforcer()
	require.NoError(t, err)

	err = loadPolicy(enf.enforcer, "p, Seller, products")
	assert.Error(t, err)
}

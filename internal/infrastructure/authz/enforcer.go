// Package authz проверяет права ролей по политике Casbin (RBAC).
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/jimlawless/whereami"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer — обёртка над casbin.SyncedEnforcer со встроенными моделью и политикой.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to load casbin model: %w", err))
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create casbin enforcer: %w", err))
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy разбирает CSV политики: строки "p, sub, obj, act" и "g, role, parent".
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Can разрешает действие, если его разрешает хотя бы одна роль пользователя.
func (a *Enforcer) Can(actor domain.Actor, object, action string) (bool, error) {
	for _, role := range actor.Roles {
		allowed, err := a.enforcer.Enforce(string(role), object, action)
		if err != nil {
			return false, e.Wrap(whereami.WhereAmI(), err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

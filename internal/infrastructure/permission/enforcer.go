package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"bizcard/internal/shared/config"
	"bizcard/internal/shared/logger"
)

// rbacModel grants actions to roles. An operator ID may be attached to a role
// through a g rule; the role name itself also matches directly.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func (e *Enforcer) Enforce(subject string, resource string, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(subject, resource, action)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "subject", subject, "resource", resource, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

// SyncPolicies makes the stored policy match the configured rules. Rules
// missing from the configuration are removed.
func (e *Enforcer) SyncPolicies(rules []config.PolicyRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	wanted := make(map[[3]string]bool, len(rules))
	for _, r := range rules {
		wanted[[3]string{r.Role, r.Resource, r.Action}] = true
	}

	existing, err := e.enforcer.GetPolicy()
	if err != nil {
		return fmt.Errorf("failed to read policy: %w", err)
	}

	for _, p := range existing {
		if len(p) < 3 || wanted[[3]string{p[0], p[1], p[2]}] {
			continue
		}
		if _, err := e.enforcer.RemovePolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to remove policy [%s, %s, %s]: %w", p[0], p[1], p[2], err)
		}
		e.logger.Infow("removed stale policy", "role", p[0], "resource", p[1], "action", p[2])
	}

	for _, r := range rules {
		added, err := e.enforcer.AddPolicy(r.Role, r.Resource, r.Action)
		if err != nil {
			e.logger.Errorw("failed to add policy", "error", err, "role", r.Role, "resource", r.Resource, "action", r.Action)
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", r.Role, r.Resource, r.Action, err)
		}
		if added {
			e.logger.Infow("added policy", "role", r.Role, "resource", r.Resource, "action", r.Action)
		}
	}

	return nil
}

func (e *Enforcer) AddRoleForOperator(operatorID string, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddRoleForUser(operatorID, role); err != nil {
		e.logger.Errorw("failed to add role for operator", "error", err, "operator_id", operatorID, "role", role)
		return fmt.Errorf("failed to add role for operator: %w", err)
	}
	return nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Info("policy reloaded successfully")
	return nil
}

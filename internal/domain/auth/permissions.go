package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"hrmaccess/internal/domain/access"
)

// Route-level permissions. They decide whether a handler runs at all; the
// access package then decides which fields the handler may touch.
const (
	PermEmployeesRead  = "employees.read"
	PermEmployeesWrite = "employees.write"
	PermEmployeesBulk  = "employees.bulk"
	PermUsersRead      = "users.read"
	PermAccessRead     = "access.read"
	PermAuditRead      = "audit.read"
)

// DefaultPermissions is the closed set of route permissions. Role grants
// outside it are rejected when the authorizer is built.
var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermEmployeesBulk,
	PermUsersRead,
	PermAccessRead,
	PermAuditRead,
}

var RolePermissions = map[access.Role][]string{
	access.RoleEmployee: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermUsersRead,
		PermAccessRead,
	},
	access.RoleManager: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesBulk,
		PermUsersRead,
		PermAccessRead,
	},
	access.RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesBulk,
		PermUsersRead,
		PermAccessRead,
		PermAuditRead,
	},
	access.RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesBulk,
		PermUsersRead,
		PermAccessRead,
		PermAuditRead,
	},
}

const rbacModel = `
[request_definition]
r = sub, perm

[policy_definition]
p = sub, perm

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.perm == p.perm
`

// Authorizer answers route permission checks from RolePermissions. The
// enforcer is loaded once and never modified afterwards.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewAuthorizer() (*Authorizer, error) {
	return newAuthorizer(RolePermissions)
}

func newAuthorizer(grants map[access.Role][]string) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	for role, perms := range grants {
		for _, perm := range perms {
			if !slices.Contains(DefaultPermissions, perm) {
				return nil, fmt.Errorf("rbac policy %s: unknown permission %q", role, perm)
			}
			if _, err := enforcer.AddPolicy(subject(role), perm); err != nil {
				return nil, fmt.Errorf("rbac policy %s/%s: %w", role, perm, err)
			}
		}
	}
	return &Authorizer{enforcer: enforcer}, nil
}

func subject(role access.Role) string {
	return "role:" + string(role)
}

func (a *Authorizer) HasPermission(_ context.Context, role access.Role, permission string) (bool, error) {
	if role == "" {
		return false, nil
	}
	return a.enforcer.Enforce(subject(role), permission)
}

// Package access decides which caller may perform which operation on which
// task. It is the only place authorization rules live: services ask it and
// act on the answer, nothing else.
package access

import (
	"fmt"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
)

// Operation is an action a caller asks to perform.
type Operation string

// Operations governed by the policy.
const (
	ReadAll      Operation = "read_all"
	ReadOwn      Operation = "read_own"
	Create       Operation = "create"
	UpdateFields Operation = "update_fields"
	UpdateStatus Operation = "update_status"
	Delete       Operation = "delete"
	ManageUsers  Operation = "manage_users"
)

// Scope is how far a permission reaches.
type Scope int

// Scopes ordered from narrowest to widest.
const (
	ScopeNone Scope = iota // operation denied
	ScopeOwn               // only resources owned by the caller
	ScopeAny               // any resource
)

func (s Scope) String() string {
	switch s {
	case ScopeOwn:
		return "own"
	case ScopeAny:
		return "any"
	default:
		return "none"
	}
}

// Table maps a role to the scope it holds for each operation.
// Missing operations are ScopeNone.
type Table map[domain.Role]map[Operation]Scope

// ownerScopes applies to every authenticated non-administrator.
var ownerScopes = map[Operation]Scope{
	ReadOwn:      ScopeOwn,
	Create:       ScopeOwn,
	UpdateFields: ScopeOwn,
	UpdateStatus: ScopeOwn,
	Delete:       ScopeOwn,
}

// DefaultTable is the permission table used in production.
var DefaultTable = Table{
	domain.RoleAdministrador: {
		ReadAll:      ScopeAny,
		ReadOwn:      ScopeAny,
		Create:       ScopeAny,
		UpdateFields: ScopeAny,
		UpdateStatus: ScopeAny,
		Delete:       ScopeAny,
		ManageUsers:  ScopeAny,
	},
	domain.RoleEmpleado:   ownerScopes,
	domain.RoleSupervisor: ownerScopes,
}

// Policy evaluates a Table. Authenticated callers with no recognised role
// get the Fallback scopes.
type Policy struct {
	table    Table
	fallback map[Operation]Scope
}

// NewPolicy creates a Policy over table, falling back to owner scopes.
func NewPolicy(table Table) *Policy {
	return &Policy{table: table, fallback: ownerScopes}
}

// Default returns a Policy over DefaultTable.
func Default() *Policy {
	return NewPolicy(DefaultTable)
}

// ScopeFor returns the widest scope any of the caller's roles grants for op.
// Unauthenticated callers get ScopeNone.
func (p *Policy) ScopeFor(caller *domain.Identity, op Operation) Scope {
	if !caller.Authenticated() {
		return ScopeNone
	}
	best := ScopeNone
	recognised := false
	for _, role := range caller.Roles {
		scopes, ok := p.table[role]
		if !ok {
			continue
		}
		recognised = true
		if s := scopes[op]; s > best {
			best = s
		}
	}
	if !recognised {
		return p.fallback[op]
	}
	return best
}

// RequireAuthenticated returns domain.ErrUnauthorized for anonymous callers.
// Services call it before loading a record whose owner Authorize needs.
func (p *Policy) RequireAuthenticated(caller *domain.Identity) error {
	if !caller.Authenticated() {
		return fmt.Errorf("%w: an authenticated caller is required", domain.ErrUnauthorized)
	}
	return nil
}

// Authorize returns nil when caller may perform op on a resource owned by
// targetOwner. It returns domain.ErrUnauthorized for anonymous callers and
// domain.ErrForbidden otherwise.
func (p *Policy) Authorize(caller *domain.Identity, op Operation, targetOwner string) error {
	if !caller.Authenticated() {
		return fmt.Errorf("%w: %s requires an authenticated caller", domain.ErrUnauthorized, op)
	}
	switch p.ScopeFor(caller, op) {
	case ScopeAny:
		return nil
	case ScopeOwn:
		if targetOwner == caller.UserName {
			return nil
		}
		return fmt.Errorf("%w: %s on resources of %q is not allowed for %q",
			domain.ErrForbidden, op, targetOwner, caller.UserName)
	default:
		return fmt.Errorf("%w: %s is not allowed for %q", domain.ErrForbidden, op, caller.UserName)
	}
}

// IsUnrestricted reports whether caller holds ScopeAny for op.
func (p *Policy) IsUnrestricted(caller *domain.Identity, op Operation) bool {
	return p.ScopeFor(caller, op) == ScopeAny
}

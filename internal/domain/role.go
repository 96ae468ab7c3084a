package domain

import "strings"

// Role is a closed set of role names understood by the access policy.
type Role string

// Known roles. Names match what existing clients send.
const (
	RoleAdministrador Role = "Administrador"
	RoleEmpleado      Role = "Empleado"
	RoleSupervisor    Role = "Supervisor"
)

var knownRoles = map[string]Role{
	strings.ToLower(string(RoleAdministrador)): RoleAdministrador,
	strings.ToLower(string(RoleEmpleado)):      RoleEmpleado,
	strings.ToLower(string(RoleSupervisor)):    RoleSupervisor,
}

// ParseRole converts a role name (case-insensitive) into a Role.
func ParseRole(raw string) (Role, error) {
	r, ok := knownRoles[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", NewValidationError("rol", "is not a known role", nil)
	}
	return r, nil
}

// ParseRoles converts every name and drops duplicates, preserving order.
func ParseRoles(raw []string) ([]Role, error) {
	out := make([]Role, 0, len(raw))
	seen := make(map[Role]bool, len(raw))
	for _, name := range raw {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out, nil
}

// RoleNames returns the string form of roles.
func RoleNames(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

package domain

// Identity is the verified caller of an operation. It is supplied by the
// authentication layer and passed explicitly to every service call.
type Identity struct {
	UserName string
	Roles    []Role
}

// NewIdentity builds an Identity for userName with the given roles.
func NewIdentity(userName string, roles ...Role) *Identity {
	return &Identity{UserName: userName, Roles: roles}
}

// Authenticated reports whether id carries a user name.
func (id *Identity) Authenticated() bool {
	return id != nil && id.UserName != ""
}

// HasRole reports whether id holds role.
func (id *Identity) HasRole(role Role) bool {
	if id == nil {
		return false
	}
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

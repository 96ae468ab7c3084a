package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// Password length bounds. 72 bytes is bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User is an account known to the identity provider.
type User struct {
	ID             int64     `json:"id"`
	UserName       string    `json:"nombre"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set while creating or changing a password
	HashedPassword string    `json:"-"`
	Roles          []Role    `json:"roles"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a validated User holding a plaintext password.
// The caller hashes the password before storing the user.
func NewUser(userName, email, password string, roles ...Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		UserName:  strings.TrimSpace(userName),
		Email:     strings.TrimSpace(email),
		Password:  password,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks the user's fields.
func (u *User) Validate() error {
	if u.UserName == "" {
		return NewValidationError("nombre", "cannot be empty", nil)
	}
	if strings.IndexFunc(u.UserName, unicode.IsSpace) >= 0 {
		return NewValidationError("nombre", "cannot contain whitespace", nil)
	}
	if u.Email == "" {
		return NewValidationError("email", "cannot be empty", nil)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return NewValidationError("email", "has invalid format", nil)
	}
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return NewValidationError("password", "is too short", nil)
		}
		if len(u.Password) > MaxPasswordLength {
			return NewValidationError("password", "is too long", nil)
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "cannot be empty", nil)
	}
	if len(u.Roles) == 0 {
		return NewValidationError("rol", "at least one role is required", nil)
	}
	for _, r := range u.Roles {
		if _, err := ParseRole(string(r)); err != nil {
			return err
		}
	}
	return nil
}

// Identity returns the caller identity for u.
func (u *User) Identity() *Identity {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return &Identity{UserName: u.UserName, Roles: roles}
}

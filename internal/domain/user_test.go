package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" user2 ", "user2@gmail.com", "User2784@", RoleEmpleado)
	require.NoError(t, err)
	assert.Equal(t, "user2", user.UserName)
	assert.Equal(t, "User2784@", user.Password)
	assert.Equal(t, []Role{RoleEmpleado}, user.Roles)
	assert.False(t, user.CreatedAt.IsZero())

	id := user.Identity()
	assert.Equal(t, "user2", id.UserName)
	assert.True(t, id.HasRole(RoleEmpleado))
	assert.False(t, id.HasRole(RoleAdministrador))
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		user   User
		field  string
		wantOK bool
	}{
		{
			name:   "valid with hash only",
			user:   User{UserName: "admin", Email: "admin@gmail.com", HashedPassword: "x", Roles: []Role{RoleAdministrador}},
			wantOK: true,
		},
		{
			name:  "empty name",
			user:  User{Email: "a@b.co", Password: "Admin052@", Roles: []Role{RoleEmpleado}},
			field: "nombre",
		},
		{
			name:  "name with space",
			user:  User{UserName: "a b", Email: "a@b.co", Password: "Admin052@", Roles: []Role{RoleEmpleado}},
			field: "nombre",
		},
		{
			name:  "bad email",
			user:  User{UserName: "a", Email: "not-an-email", Password: "Admin052@", Roles: []Role{RoleEmpleado}},
			field: "email",
		},
		{
			name:  "short password",
			user:  User{UserName: "a", Email: "a@b.co", Password: "short", Roles: []Role{RoleEmpleado}},
			field: "password",
		},
		{
			name:  "long password",
			user:  User{UserName: "a", Email: "a@b.co", Password: strings.Repeat("x", 73), Roles: []Role{RoleEmpleado}},
			field: "password",
		},
		{
			name:  "no password at all",
			user:  User{UserName: "a", Email: "a@b.co", Roles: []Role{RoleEmpleado}},
			field: "password",
		},
		{
			name:  "no roles",
			user:  User{UserName: "a", Email: "a@b.co", Password: "Admin052@"},
			field: "rol",
		},
		{
			name:  "unknown role",
			user:  User{UserName: "a", Email: "a@b.co", Password: "Admin052@", Roles: []Role{"Gerente"}},
			field: "rol",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.Validate()
			if tc.wantOK {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestParseRoles(t *testing.T) {
	t.Parallel()

	roles, err := ParseRoles([]string{"administrador", "Empleado", "ADMINISTRADOR"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleAdministrador, RoleEmpleado}, roles)
	assert.Equal(t, []string{"Administrador", "Empleado"}, RoleNames(roles))

	_, err = ParseRoles([]string{"Gerente"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	var nilID *Identity
	assert.False(t, nilID.Authenticated())
	assert.False(t, nilID.HasRole(RoleAdministrador))
	assert.False(t, (&Identity{}).Authenticated())
	assert.True(t, NewIdentity("user1", RoleEmpleado).Authenticated())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindUnauthorized, KindOf(ErrUnauthorized))
	assert.Equal(t, KindForbidden, KindOf(ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, KindConflict, KindOf(ErrConflict))
	assert.Equal(t, KindValidation, KindOf(NewValidationError("x", "bad", nil)))
	assert.Equal(t, KindInvalidTransition, KindOf(&InvalidTransitionError{From: StatusCompleted, To: StatusPending}))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/mocks"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/service"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
	"github.com/elprogramador2024/gestor-tareas/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, users store.UserStore) service.UserService {
	t.Helper()
	log, _ := logger.NewTestLogger()
	svc, err := service.NewUserService(users, &mocks.MockPasswordVerifier{}, nil, log)
	require.NoError(t, err)
	return svc
}

func newUserInput(name string, roles ...domain.Role) domain.User {
	return domain.User{
		UserName: name,
		Email:    name + "@example.com",
		Password: "contrasena-segura",
		Roles:    roles,
	}
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("administrator creates a user with a hashed password", func(t *testing.T) {
		users := memory.NewUserStore(nil)
		svc := newUserService(t, users)

		res, err := svc.CreateUser(ctx, admin, newUserInput("maria", domain.RoleEmpleado))
		require.NoError(t, err)
		assert.Equal(t, "Usuario creado exitosamente!", res.Message)
		assert.Equal(t, "maria", res.User.UserName)
		assert.Empty(t, res.User.HashedPassword)
		assert.Empty(t, res.User.Password)

		stored, err := users.GetByUserName(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, "hashed:contrasena-segura", stored.HashedPassword)
	})

	t.Run("duplicate user name conflicts", func(t *testing.T) {
		svc := newUserService(t, memory.NewUserStore(nil))
		_, err := svc.CreateUser(ctx, admin, newUserInput("maria", domain.RoleEmpleado))
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, admin, newUserInput("maria", domain.RoleSupervisor))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		svc := newUserService(t, memory.NewUserStore(nil))
		_, err := svc.CreateUser(ctx, user1, newUserInput("maria", domain.RoleEmpleado))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	invalid := map[string]func(*domain.User){
		"missing password": func(u *domain.User) { u.Password = "" },
		"short password":   func(u *domain.User) { u.Password = "corta" },
		"bad email":        func(u *domain.User) { u.Email = "no-es-email" },
		"no roles":         func(u *domain.User) { u.Roles = nil },
		"unknown role":     func(u *domain.User) { u.Roles = []domain.Role{"Jefe"} },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			svc := newUserService(t, memory.NewUserStore(nil))
			in := newUserInput("maria", domain.RoleEmpleado)
			mutate(&in)
			_, err := svc.CreateUser(ctx, admin, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("hash failure is internal", func(t *testing.T) {
		log, _ := logger.NewTestLogger()
		hasher := &mocks.MockPasswordVerifier{
			HashFn: func(string) (string, error) { return "", errors.New("bcrypt exploded") },
		}
		svc, err := service.NewUserService(memory.NewUserStore(nil), hasher, nil, log)
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, admin, newUserInput("maria", domain.RoleEmpleado))
		require.Error(t, err)
		assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the password when none is given", func(t *testing.T) {
		users := new(mocks.UserStore)
		existing := &domain.User{
			ID:             4,
			UserName:       "maria",
			Email:          "maria@example.com",
			HashedPassword: "old-hash",
			Roles:          []domain.Role{domain.RoleEmpleado},
		}
		users.On("GetByUserName", mock.Anything, "maria").Return(existing, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.UserName == "maria" &&
				u.Email == "nueva@example.com" &&
				u.HashedPassword == "" &&
				len(u.Roles) == 1 && u.Roles[0] == domain.RoleSupervisor
		})).Return(nil)

		svc := newUserService(t, users)
		res, err := svc.UpdateUser(ctx, admin, domain.User{
			UserName: "maria",
			Email:    "nueva@example.com",
			Roles:    []domain.Role{domain.RoleSupervisor},
		})
		require.NoError(t, err)
		assert.Equal(t, "Usuario actualizado exitosamente!", res.Message)
		users.AssertExpectations(t)
	})

	t.Run("hashes a new password", func(t *testing.T) {
		users := memory.NewUserStore(nil)
		svc := newUserService(t, users)
		_, err := svc.CreateUser(ctx, admin, newUserInput("maria", domain.RoleEmpleado))
		require.NoError(t, err)

		_, err = svc.UpdateUser(ctx, admin, domain.User{UserName: "maria", Password: "otra-contrasena"})
		require.NoError(t, err)

		stored, err := users.GetByUserName(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, "hashed:otra-contrasena", stored.HashedPassword)
		assert.Equal(t, "maria@example.com", stored.Email)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc := newUserService(t, memory.NewUserStore(nil))
		_, err := svc.UpdateUser(ctx, admin, domain.User{UserName: "nadie", Email: "x@example.com"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		users := new(mocks.UserStore)
		svc := newUserService(t, users)
		_, err := svc.UpdateUser(ctx, user2, domain.User{UserName: "user2", Roles: []domain.Role{domain.RoleAdministrador}})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	tasks := memory.NewTaskStore()
	users := memory.NewUserStore(tasks)
	svc := newUserService(t, users)

	_, err := svc.CreateUser(ctx, admin, newUserInput("maria", domain.RoleEmpleado))
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, admin, newUserInput("pedro", domain.RoleEmpleado))
	require.NoError(t, err)
	_, err = tasks.Insert(ctx, &domain.Task{Title: "pendiente", OwnerUserName: "pedro", Status: domain.StatusPending})
	require.NoError(t, err)

	res, err := svc.DeleteUser(ctx, admin, "maria")
	require.NoError(t, err)
	assert.Equal(t, "Usuario eliminado exitosamente!", res.Message)

	_, err = svc.DeleteUser(ctx, admin, "maria")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.DeleteUser(ctx, admin, "pedro")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.DeleteUser(ctx, user1, "pedro")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t, memory.NewUserStore(nil))
	for _, name := range []string{"zoe", "ana"} {
		_, err := svc.CreateUser(ctx, admin, newUserInput(name, domain.RoleEmpleado))
		require.NoError(t, err)
	}

	list, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ana", list[0].UserName)
	assert.Empty(t, list[0].HashedPassword)

	_, err = svc.ListUsers(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore(nil)
	svc := newUserService(t, users)

	created, err := svc.EnsureAdmin(ctx, "root", "root@example.com", "contrasena-root")
	require.NoError(t, err)
	assert.True(t, created)

	stored, err := users.GetByUserName(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleAdministrador}, stored.Roles)

	created, err = svc.EnsureAdmin(ctx, "root", "root@example.com", "contrasena-root")
	require.NoError(t, err)
	assert.False(t, created)

	t.Run("store failure is reported", func(t *testing.T) {
		failing := new(mocks.UserStore)
		failing.On("GetByUserName", mock.Anything, "root").Return(nil, errors.New("db down"))
		_, err := newUserService(t, failing).EnsureAdmin(ctx, "root", "root@example.com", "contrasena-root")
		assert.Error(t, err)
	})
}

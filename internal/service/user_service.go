package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/domain/access"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

// Confirmation messages returned with successful user mutations.
const (
	MsgUserCreated = "Usuario creado exitosamente!"
	MsgUserUpdated = "Usuario actualizado exitosamente!"
	MsgUserDeleted = "Usuario eliminado exitosamente!"
)

// UserResult confirms a successful user mutation.
type UserResult struct {
	Message string
	User    *domain.User
}

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserService manages accounts. Every operation except EnsureAdmin
// requires the ManageUsers permission.
type UserService interface {
	// ListUsers returns every user ordered by user name.
	ListUsers(ctx context.Context, caller *domain.Identity) ([]domain.User, error)

	// CreateUser stores a new user. user.Password holds the plaintext password.
	CreateUser(ctx context.Context, caller *domain.Identity, user domain.User) (*UserResult, error)

	// UpdateUser changes email and roles of an existing user, and the
	// password when user.Password is set. Empty fields keep their value.
	UpdateUser(ctx context.Context, caller *domain.Identity, user domain.User) (*UserResult, error)

	// DeleteUser removes a user that owns no tasks.
	DeleteUser(ctx context.Context, caller *domain.Identity, userName string) (*UserResult, error)

	// EnsureAdmin creates an administrator named userName unless a user
	// with that name already exists. It reports whether a user was created.
	EnsureAdmin(ctx context.Context, userName, email, password string) (bool, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users  store.UserStore
	hasher PasswordHasher
	policy *access.Policy
	logger *slog.Logger
}

// Ensure userServiceImpl implements UserService interface
var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService. A nil policy selects access.Default().
func NewUserService(
	users store.UserStore,
	hasher PasswordHasher,
	policy *access.Policy,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if policy == nil {
		policy = access.Default()
	}
	return &userServiceImpl{
		users:  users,
		hasher: hasher,
		policy: policy,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userServiceImpl) fail(ctx context.Context, op, message string, err error, attrs ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	args := append([]any{"operation", op, "error", err}, attrs...)
	switch domain.KindOf(err) {
	case domain.KindInternal:
		log.Error(message, args...)
	case domain.KindForbidden, domain.KindUnauthorized:
		log.Warn(message, args...)
	default:
		log.Debug(message, args...)
	}
	return NewUserServiceError(op, message, err)
}

// public strips credentials from a user before it leaves the service.
func public(u *domain.User) *domain.User {
	out := *u
	out.Password = ""
	out.HashedPassword = ""
	return &out
}

// ListUsers implements UserService.ListUsers.
func (s *userServiceImpl) ListUsers(ctx context.Context, caller *domain.Identity) ([]domain.User, error) {
	const op = "list_users"
	if err := s.policy.Authorize(caller, access.ManageUsers, ""); err != nil {
		return nil, s.fail(ctx, op, "caller may not manage users", err)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to list users", translateStoreError(err))
	}
	for i := range users {
		users[i] = *public(&users[i])
	}
	return users, nil
}

// CreateUser implements UserService.CreateUser.
func (s *userServiceImpl) CreateUser(ctx context.Context, caller *domain.Identity, user domain.User) (*UserResult, error) {
	const op = "create_user"
	if err := s.policy.Authorize(caller, access.ManageUsers, ""); err != nil {
		return nil, s.fail(ctx, op, "caller may not manage users", err)
	}

	created, err := s.create(ctx, op, user)
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user created",
		"user_name", created.UserName,
		"roles", domain.RoleNames(created.Roles),
		"caller", caller.UserName)
	return &UserResult{Message: MsgUserCreated, User: public(created)}, nil
}

func (s *userServiceImpl) create(ctx context.Context, op string, user domain.User) (*domain.User, error) {
	if user.Password == "" {
		return nil, s.fail(ctx, op, "invalid user", domain.NewValidationError("password", "cannot be empty", nil))
	}
	candidate, err := domain.NewUser(user.UserName, user.Email, user.Password, user.Roles...)
	if err != nil {
		return nil, s.fail(ctx, op, "invalid user", err)
	}

	hashed, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to hash password", err)
	}
	candidate.HashedPassword = hashed
	candidate.Password = ""

	if err := s.users.Create(ctx, candidate); err != nil {
		return nil, s.fail(ctx, op, "failed to store user", translateStoreError(err),
			"user_name", candidate.UserName)
	}
	return candidate, nil
}

// UpdateUser implements UserService.UpdateUser.
func (s *userServiceImpl) UpdateUser(ctx context.Context, caller *domain.Identity, user domain.User) (*UserResult, error) {
	const op = "update_user"
	if err := s.policy.Authorize(caller, access.ManageUsers, ""); err != nil {
		return nil, s.fail(ctx, op, "caller may not manage users", err)
	}

	userName := strings.TrimSpace(user.UserName)
	if userName == "" {
		return nil, s.fail(ctx, op, "invalid user", domain.NewValidationError("nombre", "cannot be empty", nil))
	}

	existing, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load user", translateStoreError(err), "user_name", userName)
	}

	if email := strings.TrimSpace(user.Email); email != "" {
		existing.Email = email
	}
	if len(user.Roles) > 0 {
		existing.Roles = user.Roles
	}
	existing.Password = user.Password
	if err := existing.Validate(); err != nil {
		return nil, s.fail(ctx, op, "invalid user", err, "user_name", userName)
	}

	// An empty HashedPassword tells the store to keep the current one.
	existing.HashedPassword = ""
	if existing.Password != "" {
		hashed, err := s.hasher.Hash(existing.Password)
		if err != nil {
			return nil, s.fail(ctx, op, "failed to hash password", err)
		}
		existing.HashedPassword = hashed
		existing.Password = ""
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, existing); err != nil {
		return nil, s.fail(ctx, op, "failed to update user", translateStoreError(err), "user_name", userName)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user updated",
		"user_name", userName,
		"password_changed", user.Password != "",
		"caller", caller.UserName)
	return &UserResult{Message: MsgUserUpdated, User: public(existing)}, nil
}

// DeleteUser implements UserService.DeleteUser.
func (s *userServiceImpl) DeleteUser(ctx context.Context, caller *domain.Identity, userName string) (*UserResult, error) {
	const op = "delete_user"
	if err := s.policy.Authorize(caller, access.ManageUsers, ""); err != nil {
		return nil, s.fail(ctx, op, "caller may not manage users", err)
	}

	userName = strings.TrimSpace(userName)
	existing, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load user", translateStoreError(err), "user_name", userName)
	}
	if err := s.users.Delete(ctx, userName); err != nil {
		return nil, s.fail(ctx, op, "failed to delete user", translateStoreError(err), "user_name", userName)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted",
		"user_name", userName,
		"caller", caller.UserName)
	return &UserResult{Message: MsgUserDeleted, User: public(existing)}, nil
}

// EnsureAdmin implements UserService.EnsureAdmin.
func (s *userServiceImpl) EnsureAdmin(ctx context.Context, userName, email, password string) (bool, error) {
	const op = "ensure_admin"
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.users.GetByUserName(ctx, userName)
	switch {
	case err == nil:
		log.Debug("bootstrap administrator already exists", "user_name", userName)
		return false, nil
	case !store.IsNotFoundError(err):
		return false, s.fail(ctx, op, "failed to look up bootstrap administrator", translateStoreError(err))
	}

	_, err = s.create(ctx, op, domain.User{
		UserName: userName,
		Email:    email,
		Password: password,
		Roles:    []domain.Role{domain.RoleAdministrador},
	})
	if err != nil {
		// Another instance may have created it in the meantime.
		if store.IsDuplicateError(err) {
			return false, nil
		}
		return false, err
	}

	log.Info("bootstrap administrator created", "user_name", userName)
	return true, nil
}

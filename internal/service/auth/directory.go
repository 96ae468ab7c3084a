package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

// dummyHash is compared against when the user does not exist so that
// unknown names and wrong passwords take about the same time.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZOWkqKq6XkFzRhPBpXDRHe"

// Directory is the identity provider backed by a UserStore. It verifies
// credentials, resolves roles and answers whether a user exists.
type Directory struct {
	users    store.UserStore
	verifier PasswordVerifier
	logger   *slog.Logger
}

// NewDirectory creates a Directory.
func NewDirectory(users store.UserStore, verifier PasswordVerifier, logger *slog.Logger) *Directory {
	if users == nil {
		panic("users cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		users:    users,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "directory")),
	}
}

// Authenticate checks userName and password and returns the caller's identity.
// Any mismatch yields ErrInvalidCredentials.
func (d *Directory) Authenticate(ctx context.Context, userName, password string) (*domain.Identity, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	user, err := d.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = d.verifier.Compare(dummyHash, password)
			log.Debug("authentication failed: unknown user", slog.String("user_name", userName))
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for authentication",
			slog.String("error", err.Error()),
			slog.String("user_name", userName))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := d.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("authentication failed: password mismatch", slog.String("user_name", userName))
		return nil, ErrInvalidCredentials
	}

	return user.Identity(), nil
}

// RolesOf returns the current roles of userName.
// An unknown user yields an error matching domain.ErrUnauthorized.
func (d *Directory) RolesOf(ctx context.Context, userName string) ([]domain.Role, error) {
	user, err := d.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %s no longer exists", domain.ErrUnauthorized, userName)
		}
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	return user.Roles, nil
}

// UserExists reports whether userName is a known user.
func (d *Directory) UserExists(ctx context.Context, userName string) (bool, error) {
	_, err := d.users.GetByUserName(ctx, userName)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrUserNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
}

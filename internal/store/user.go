package store

import (
	"context"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Users are stored with an already hashed password; the plaintext
// Password field is never persisted.
type UserStore interface {
	// Create saves a new user and sets its ID.
	// Returns ErrUserNameExists if the user name is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByUserName retrieves a user by user name.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)

	// List returns every user ordered by user name.
	List(ctx context.Context) ([]domain.User, error)

	// Update replaces email, roles and hashed password of the user with
	// the same user name.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by user name.
	// Returns ErrUserNotFound if the user does not exist and ErrReferenced
	// while tasks are still owned by the user.
	Delete(ctx context.Context, userName string) error
}

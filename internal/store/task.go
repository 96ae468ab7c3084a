package store

import (
	"context"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
)

// TaskFilter narrows a task query. The zero value matches every task.
type TaskFilter struct {
	OwnerUserName string
}

// ModifyFunc mutates a task in place during TaskStore.Modify.
// Returning an error aborts the modification without writing anything.
type ModifyFunc func(task *domain.Task) error

// TaskStore defines the interface for task persistence.
// Implementations never hand out pointers into their own state.
type TaskStore interface {
	// Insert stores a new task and returns its id.
	// A zero ID is assigned by the store; a supplied ID is kept and
	// ErrTaskIDExists is returned when it is already taken.
	Insert(ctx context.Context, task *domain.Task) (int64, error)

	// Get retrieves a task by id.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Update replaces the stored task with the same id.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by id.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// Query returns up to limit tasks matching filter, ordered by id ascending
	// and starting at offset, along with the total number of matching tasks.
	Query(ctx context.Context, filter TaskFilter, offset, limit int) ([]domain.Task, int, error)

	// Modify loads the task with id, applies fn and writes the result back
	// as one atomic step with respect to other Modify, Update and Delete
	// calls on the same id. Returns ErrTaskNotFound if the task does not
	// exist, or fn's error unchanged.
	Modify(ctx context.Context, id int64, fn ModifyFunc) (*domain.Task, error)
}

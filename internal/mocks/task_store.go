package mocks

import (
	"context"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
	"github.com/stretchr/testify/mock"
)

// TaskStore is a mock of store.TaskStore for use with testify/mock
type TaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*TaskStore)(nil)

// Insert is a mock implementation of store.TaskStore.Insert
func (m *TaskStore) Insert(ctx context.Context, task *domain.Task) (int64, error) {
	args := m.Called(ctx, task)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

// Get is a mock implementation of store.TaskStore.Get
func (m *TaskStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update is a mock implementation of store.TaskStore.Update
func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// Delete is a mock implementation of store.TaskStore.Delete
func (m *TaskStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Query is a mock implementation of store.TaskStore.Query
func (m *TaskStore) Query(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int,
) ([]domain.Task, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Int(1), args.Error(2)
}

// Modify is a mock implementation of store.TaskStore.Modify.
// When the first return value is a *domain.Task, fn is applied to a copy of it
// and its error, if any, is returned in place of the configured one.
func (m *TaskStore) Modify(ctx context.Context, id int64, fn store.ModifyFunc) (*domain.Task, error) {
	args := m.Called(ctx, id, fn)
	current, ok := args.Get(0).(*domain.Task)
	if !ok || args.Error(1) != nil {
		return nil, args.Error(1)
	}
	working := *current
	if err := fn(&working); err != nil {
		return nil, err
	}
	return &working, nil
}

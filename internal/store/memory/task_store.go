package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

// TaskStore is a map-backed store.TaskStore guarded by a single RWMutex.
// Modify holds the write lock for the whole read-modify-write.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  map[int64]domain.Task
	nextID int64
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:  make(map[int64]domain.Task),
		nextID: 1,
	}
}

// Insert implements store.TaskStore.
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := task.ID
	if id == 0 {
		for {
			id = s.nextID
			s.nextID++
			if _, taken := s.tasks[id]; !taken {
				break
			}
		}
	} else {
		if _, taken := s.tasks[id]; taken {
			return 0, store.ErrTaskIDExists
		}
		if id >= s.nextID {
			s.nextID = id + 1
		}
	}

	stored := *task
	stored.ID = id
	s.tasks[id] = stored
	return id, nil
}

// Get implements store.TaskStore.
func (s *TaskStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// Query implements store.TaskStore.
func (s *TaskStore) Query(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int,
) ([]domain.Task, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("%w: offset %d, limit %d", store.ErrInvalidPage, offset, limit)
	}

	s.mu.RLock()
	matched := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.OwnerUserName == "" || t.OwnerUserName == filter.OwnerUserName {
			matched = append(matched, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if offset >= total || limit <= 0 {
		return []domain.Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Modify implements store.TaskStore.
func (s *TaskStore) Modify(ctx context.Context, id int64, fn store.ModifyFunc) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	working := current
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.ID = id
	s.tasks[id] = working

	result := working
	return &result, nil
}

// countOwnedBy reports how many tasks userName owns.
func (s *TaskStore) countOwnedBy(userName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.tasks {
		if t.OwnerUserName == userName {
			n++
		}
	}
	return n
}

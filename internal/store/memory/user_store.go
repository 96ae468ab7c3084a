package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

// UserStore is a map-backed store.UserStore keyed by user name.
type UserStore struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	nextID int64
	tasks  *TaskStore
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty UserStore. When tasks is non-nil, Delete
// refuses to remove users that still own tasks in it.
func NewUserStore(tasks *TaskStore) *UserStore {
	return &UserStore{
		users:  make(map[string]domain.User),
		nextID: 1,
		tasks:  tasks,
	}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.UserName]; exists {
		return store.ErrUserNameExists
	}

	now := time.Now().UTC()
	user.ID = s.nextID
	s.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	s.users[user.UserName] = copyUser(user)
	return nil
}

// GetByUserName implements store.UserStore.
func (s *UserStore) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userName]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := copyUser(&u)
	return &out, nil
}

// List implements store.UserStore.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(&u))
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })
	return users, nil
}

// Update implements store.UserStore.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.UserName]
	if !ok {
		return store.ErrUserNotFound
	}
	existing.Email = user.Email
	existing.Roles = user.Roles
	if user.HashedPassword != "" {
		existing.HashedPassword = user.HashedPassword
	}
	existing.UpdatedAt = time.Now().UTC()
	s.users[user.UserName] = copyUser(&existing)
	return nil
}

// Delete implements store.UserStore.
func (s *UserStore) Delete(ctx context.Context, userName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userName]; !ok {
		return store.ErrUserNotFound
	}
	if s.tasks != nil && s.tasks.countOwnedBy(userName) > 0 {
		return store.ErrReferenced
	}
	delete(s.users, userName)
	return nil
}

// copyUser drops the plaintext password and detaches the roles slice.
func copyUser(u *domain.User) domain.User {
	out := *u
	out.Password = ""
	out.Roles = append([]domain.Role(nil), u.Roles...)
	return out
}

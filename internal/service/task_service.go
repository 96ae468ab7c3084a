package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/domain/access"
	"github.com/elprogramador2024/gestor-tareas/internal/pagination"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

// Confirmation messages returned with successful mutations.
// Clients display them verbatim.
const (
	MsgTaskCreated       = "Tarea creada exitosamente!"
	MsgTaskUpdated       = "Tarea actualizada exitosamente!"
	MsgTaskStatusUpdated = "Estado de la Tarea actualizado exitosamente!"
	MsgTaskDeleted       = "Tarea eliminada exitosamente!"
)

// ResultKind names the mutation a Result confirms.
type ResultKind string

// Result kinds.
const (
	ResultCreated       ResultKind = "created"
	ResultUpdated       ResultKind = "updated"
	ResultStatusUpdated ResultKind = "status_updated"
	ResultDeleted       ResultKind = "deleted"
)

// Result confirms a successful mutation. Task is the record as stored
// after the mutation (for deletions, as it was before removal).
type Result struct {
	Kind    ResultKind
	Message string
	Task    *domain.Task
}

// UserDirectory answers whether a user exists. Task owners must exist.
type UserDirectory interface {
	UserExists(ctx context.Context, userName string) (bool, error)
}

// TaskService provides authorization-aware access to tasks.
// Every operation receives the caller's identity explicitly.
type TaskService interface {
	// ListAll returns one page of every task. Administrators only.
	ListAll(ctx context.Context, caller *domain.Identity, pageNumber, pageSize int) (*pagination.Page[domain.Task], error)

	// ListByUser returns one page of the tasks owned by userName.
	// Non-administrators may only list their own tasks.
	ListByUser(
		ctx context.Context,
		caller *domain.Identity,
		userName string,
		pageNumber, pageSize int,
	) (*pagination.Page[domain.Task], error)

	// Get returns a single task visible to the caller.
	Get(ctx context.Context, caller *domain.Identity, id int64) (*domain.Task, error)

	// Create stores a new task. An empty owner defaults to the caller.
	Create(ctx context.Context, caller *domain.Identity, task domain.Task) (*Result, error)

	// Update replaces title, description, dates and (administrators only)
	// owner of an existing task. The status is never changed here.
	Update(ctx context.Context, caller *domain.Identity, task domain.Task) (*Result, error)

	// UpdateStatus moves a task to patch.Status if the state machine allows it.
	// Every other field of patch except ID is ignored.
	UpdateStatus(ctx context.Context, caller *domain.Identity, patch domain.Task) (*Result, error)

	// Delete removes a task.
	Delete(ctx context.Context, caller *domain.Identity, id int64) (*Result, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	users  UserDirectory
	policy *access.Policy
	logger *slog.Logger
	now    func() time.Time
}

// Ensure taskServiceImpl implements TaskService interface
var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService. A nil policy selects access.Default().
func NewTaskService(
	tasks store.TaskStore,
	users UserDirectory,
	policy *access.Policy,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if policy == nil {
		policy = access.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		users:  users,
		policy: policy,
		logger: logger.With(slog.String("component", "task_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// fail logs err at a level matching its kind and wraps it for the caller.
func (s *taskServiceImpl) fail(ctx context.Context, op, message string, err error, attrs ...any) error {
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
	return NewTaskServiceError(op, message, err)
}

func (s *taskServiceImpl) page(
	ctx context.Context,
	filter store.TaskFilter,
	pageNumber, pageSize int,
) (*pagination.Page[domain.Task], error) {
	req, err := pagination.NewRequest(pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	return pagination.Fetch(ctx, req, func(ctx context.Context, offset, limit int) ([]domain.Task, int, error) {
		tasks, total, err := s.tasks.Query(ctx, filter, offset, limit)
		return tasks, total, translateStoreError(err)
	})
}

// ListAll implements TaskService.ListAll.
func (s *taskServiceImpl) ListAll(
	ctx context.Context,
	caller *domain.Identity,
	pageNumber, pageSize int,
) (*pagination.Page[domain.Task], error) {
	const op = "list_all"
	if err := s.policy.Authorize(caller, access.ReadAll, ""); err != nil {
		return nil, s.fail(ctx, op, "caller may not list every task", err)
	}

	page, err := s.page(ctx, store.TaskFilter{}, pageNumber, pageSize)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to list tasks", err)
	}
	return page, nil
}

// ListByUser implements TaskService.ListByUser.
func (s *taskServiceImpl) ListByUser(
	ctx context.Context,
	caller *domain.Identity,
	userName string,
	pageNumber, pageSize int,
) (*pagination.Page[domain.Task], error) {
	const op = "list_by_user"
	userName = strings.TrimSpace(userName)
	if err := s.policy.RequireAuthenticated(caller); err != nil {
		return nil, s.fail(ctx, op, "caller is not authenticated", err)
	}
	if userName == "" {
		return nil, s.fail(ctx, op, "user name is required",
			domain.NewValidationError("userName", "cannot be empty", nil))
	}
	if err := s.policy.Authorize(caller, access.ReadOwn, userName); err != nil {
		return nil, s.fail(ctx, op, "caller may not list these tasks", err, "owner", userName)
	}

	page, err := s.page(ctx, store.TaskFilter{OwnerUserName: userName}, pageNumber, pageSize)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to list tasks", err, "owner", userName)
	}
	return page, nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(ctx context.Context, caller *domain.Identity, id int64) (*domain.Task, error) {
	const op = "get"
	if err := s.policy.RequireAuthenticated(caller); err != nil {
		return nil, s.fail(ctx, op, "caller is not authenticated", err)
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load task", translateStoreError(err), "task_id", id)
	}
	if err := s.policy.Authorize(caller, access.ReadOwn, task.OwnerUserName); err != nil {
		return nil, s.fail(ctx, op, "caller may not read this task", err, "task_id", id)
	}
	return task, nil
}

// ownerMustExist returns a NotFound error unless userName exists.
func (s *taskServiceImpl) ownerMustExist(ctx context.Context, userName string) error {
	exists, err := s.users.UserExists(ctx, userName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %w: %q", domain.ErrNotFound, store.ErrUserNotFound, userName)
	}
	return nil
}

// Create implements TaskService.Create.
func (s *taskServiceImpl) Create(ctx context.Context, caller *domain.Identity, task domain.Task) (*Result, error) {
	const op = "create"
	if err := s.policy.RequireAuthenticated(caller); err != nil {
		return nil, s.fail(ctx, op, "caller is not authenticated", err)
	}

	task.OwnerUserName = strings.TrimSpace(task.OwnerUserName)
	if task.OwnerUserName == "" {
		task.OwnerUserName = caller.UserName
	}
	if err := s.policy.Authorize(caller, access.Create, task.OwnerUserName); err != nil {
		return nil, s.fail(ctx, op, "caller may not create tasks for this owner", err, "owner", task.OwnerUserName)
	}

	if task.ID < 0 {
		return nil, s.fail(ctx, op, "invalid task", domain.NewValidationError("id", "cannot be negative", nil))
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	} else {
		status, err := domain.ParseStatus(string(task.Status))
		if err != nil {
			return nil, s.fail(ctx, op, "invalid task", err)
		}
		task.Status = status
	}
	if err := task.Validate(); err != nil {
		return nil, s.fail(ctx, op, "invalid task", err)
	}
	if err := s.ownerMustExist(ctx, task.OwnerUserName); err != nil {
		return nil, s.fail(ctx, op, "task owner does not exist", err, "owner", task.OwnerUserName)
	}

	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	id, err := s.tasks.Insert(ctx, &task)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to store task", translateStoreError(err), "owner", task.OwnerUserName)
	}
	task.ID = id

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		"task_id", id,
		"owner", task.OwnerUserName,
		"caller", caller.UserName)
	return &Result{Kind: ResultCreated, Message: MsgTaskCreated, Task: &task}, nil
}

// Update implements TaskService.Update.
func (s *taskServiceImpl) Update(ctx context.Context, caller *domain.Identity, task domain.Task) (*Result, error) {
	const op = "update"
	if err := s.policy.RequireAuthenticated(caller); err != nil {
		return nil, s.fail(ctx, op, "caller is not authenticated", err)
	}
	if task.ID <= 0 {
		return nil, s.fail(ctx, op, "invalid task", domain.NewValidationError("id", "must be positive", nil))
	}

	// Owner existence is resolved before the record is locked; the decision
	// to use it is made under the lock.
	requestedOwner := strings.TrimSpace(task.OwnerUserName)
	var ownerErr error
	if requestedOwner != "" {
		ownerErr = s.ownerMustExist(ctx, requestedOwner)
		if ownerErr != nil && !errors.Is(ownerErr, domain.ErrNotFound) {
			return nil, s.fail(ctx, op, "failed to look up task owner", ownerErr)
		}
	}

	updated, err := s.tasks.Modify(ctx, task.ID, func(current *domain.Task) error {
		if err := s.policy.Authorize(caller, access.UpdateFields, current.OwnerUserName); err != nil {
			return err
		}

		owner := current.OwnerUserName
		if requestedOwner != "" && requestedOwner != current.OwnerUserName {
			if !s.policy.IsUnrestricted(caller, access.UpdateFields) {
				return fmt.Errorf("%w: only administrators may reassign tasks", domain.ErrForbidden)
			}
			if ownerErr != nil {
				return ownerErr
			}
			owner = requestedOwner
		}

		candidate := *current
		candidate.ApplyFields(task)
		candidate.OwnerUserName = owner
		candidate.UpdatedAt = s.now()
		if err := candidate.Validate(); err != nil {
			return err
		}
		*current = candidate
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to update task", translateStoreError(err), "task_id", task.ID)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task updated",
		"task_id", updated.ID,
		"caller", caller.UserName)
	return &Result{Kind: ResultUpdated, Message: MsgTaskUpdated, Task: updated}, nil
}

// UpdateStatus implements TaskService.UpdateStatus.
func (s *taskServiceImpl) UpdateStatus(ctx context.Context, caller *domain.Identity, patch domain.Task) (*Result, error) {
	const op = "update_status"
	if err := s.policy.RequireAuthenticated(caller); err != nil {
		return nil, s.fail(ctx, op, "caller is not authenticated", err)
	}
	if patch.ID <= 0 {
		return nil, s.fail(ctx, op, "invalid status change", domain.NewValidationError("id", "must be positive", nil))
	}
	requested, err := domain.ParseStatus(string(patch.Status))
	if err != nil {
		return nil, s.fail(ctx, op, "invalid status change", err)
	}

	var from domain.Status
	updated, err := s.tasks.Modify(ctx, patch.ID, func(current *domain.Task) error {
		if err := s.policy.Authorize(caller, access.UpdateStatus, current.OwnerUserName); err != nil {
			return err
		}
		if err := domain.ValidateTransition(current.Status, requested); err != nil {
			return err
		}
		from = current.Status
		if current.Status != requested {
			current.Status = requested
			current.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to change task status", translateStoreError(err),
			"task_id", patch.ID, "requested", string(requested))
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task status changed",
		"task_id", updated.ID,
		"from", string(from),
		"to", string(updated.Status),
		"closed", updated.Status.IsTerminal(),
		"caller", caller.UserName)
	return &Result{Kind: ResultStatusUpdated, Message: MsgTaskStatusUpdated, Task: updated}, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, caller *domain.Identity, id int64) (*Result, error) {
	const op = "delete"
	if err := s.policy.RequireAuthenticated(caller); err != nil {
		return nil, s.fail(ctx, op, "caller is not authenticated", err)
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load task", translateStoreError(err), "task_id", id)
	}
	if err := s.policy.Authorize(caller, access.Delete, task.OwnerUserName); err != nil {
		return nil, s.fail(ctx, op, "caller may not delete this task", err, "task_id", id)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, s.fail(ctx, op, "failed to delete task", translateStoreError(err), "task_id", id)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		"task_id", id,
		"owner", task.OwnerUserName,
		"caller", caller.UserName)
	return &Result{Kind: ResultDeleted, Message: MsgTaskDeleted, Task: task}, nil
}

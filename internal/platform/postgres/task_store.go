package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

const taskColumns = `id, title, description, start_date, end_date, owner_user_name, status, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var status string
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.OwnerUserName,
		&status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	return &t, nil
}

// Insert implements store.TaskStore.Insert.
// A supplied ID is written as-is and the id sequence is moved past it.
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var id int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if task.ID == 0 {
			return tx.QueryRowContext(ctx, `
				INSERT INTO tasks (title, description, start_date, end_date, owner_user_name, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id
			`,
				task.Title, task.Description, task.StartDate, task.EndDate,
				task.OwnerUserName, string(task.Status), task.CreatedAt, task.UpdatedAt,
			).Scan(&id)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, title, description, start_date, end_date, owner_user_name, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			task.ID, task.Title, task.Description, task.StartDate, task.EndDate,
			task.OwnerUserName, string(task.Status), task.CreatedAt, task.UpdatedAt,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			SELECT setval(pg_get_serial_sequence('tasks', 'id'), GREATEST((SELECT MAX(id) FROM tasks), 1))
		`); err != nil {
			return err
		}
		id = task.ID
		return nil
	})
	if err != nil {
		mapped := tasksTable.wrap("insert", err)
		log.Error("failed to insert task",
			slog.String("error", err.Error()),
			slog.String("owner", task.OwnerUserName))
		return 0, mapped
	}

	log.Debug("task inserted", slog.Int64("task_id", id))
	return id, nil
}

// Get implements store.TaskStore.Get.
func (s *PostgresTaskStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, tasksTable.wrap("get", err)
	}
	return task, nil
}

func updateTask(ctx context.Context, db store.DBTX, task *domain.Task) error {
	result, err := db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, start_date = $3, end_date = $4,
		    owner_user_name = $5, status = $6, updated_at = $7
		WHERE id = $8
	`,
		task.Title, task.Description, task.StartDate, task.EndDate,
		task.OwnerUserName, string(task.Status), task.UpdatedAt, task.ID,
	)
	if err != nil {
		return tasksTable.wrap("update", err)
	}
	return tasksTable.checkRowsAffected("update", result)
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := updateTask(ctx, s.db, task); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID))
		}
		return err
	}
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return tasksTable.wrap("delete", err)
	}
	return tasksTable.checkRowsAffected("delete", result)
}

// Query implements store.TaskStore.Query.
// The count and the page are read from one snapshot.
func (s *PostgresTaskStore) Query(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int,
) ([]domain.Task, int, error) {
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("%w: offset %d, limit %d", store.ErrInvalidPage, offset, limit)
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks := []domain.Task{}
	var total int

	err := store.RunInSnapshot(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		where, args := "", []any{}
		if filter.OwnerUserName != "" {
			where = ` WHERE owner_user_name = $1`
			args = append(args, filter.OwnerUserName)
		}

		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
			return err
		}
		if total == 0 || offset >= total || limit <= 0 {
			return nil
		}

		n := len(args)
		query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
			taskColumns, where, n+1, n+2)
		rows, err := tx.QueryContext(ctx, query, append(args, limit, offset)...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("owner", filter.OwnerUserName))
		return nil, 0, tasksTable.wrap("query", err)
	}

	return tasks, total, nil
}

// Modify implements store.TaskStore.Modify.
// The row stays locked with SELECT ... FOR UPDATE until fn's result is written.
func (s *PostgresTaskStore) Modify(ctx context.Context, id int64, fn store.ModifyFunc) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var result *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		task, err := scanTask(tx.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrTaskNotFound
			}
			log.Error("failed to lock task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return tasksTable.wrap("lock", err)
		}

		if err := fn(task); err != nil {
			return err
		}
		task.ID = id

		if err := updateTask(ctx, tx, task); err != nil {
			return err
		}
		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("task modified", slog.Int64("task_id", id))
	return result, nil
}

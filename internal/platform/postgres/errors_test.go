package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/elprogramador2024/gestor-tareas/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		ColumnName:     "title",
		ConstraintName: constraint,
	}
}

type stubResult struct {
	rowsAffected int64
	err          error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, r.err }
func (r stubResult) RowsAffected() (int64, error) { return r.rowsAffected, r.err }

func TestTableWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		table   table
		err     error
		target  error
		message string
	}{
		{"task no rows", tasksTable, sql.ErrNoRows, store.ErrTaskNotFound,
			"get operation on task failed: no matching row"},
		{"task id taken", tasksTable, newPgError(uniqueViolation, "tasks_pkey"), store.ErrTaskIDExists,
			"get operation on task failed: unique constraint tasks_pkey"},
		{"task owner missing", tasksTable, fmt.Errorf("exec: %w", newPgError(foreignKeyViolation, "tasks_owner_user_name_fkey")),
			store.ErrUserNotFound, "get operation on task failed: foreign key tasks_owner_user_name_fkey"},
		{"task check", tasksTable, newPgError(checkViolation, "tasks_status_check"), store.ErrInvalidEntity,
			"get operation on task failed: check constraint tasks_status_check"},
		{"user not null", usersTable, newPgError(notNullViolation, ""), store.ErrInvalidEntity,
			"get operation on user failed: null value in title"},
		{"user name taken", usersTable, newPgError(uniqueViolation, "users_user_name_key"), store.ErrUserNameExists,
			"get operation on user failed: unique constraint users_user_name_key"},
		{"user still owns tasks", usersTable, newPgError(foreignKeyViolation, "tasks_owner_user_name_fkey"),
			store.ErrReferenced, "get operation on user failed: foreign key tasks_owner_user_name_fkey"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.table.wrap("get", tc.err)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.Contains(t, err.Error(), tc.message)

			var storeErr *store.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, tc.table.entity, storeErr.Entity)
			assert.Equal(t, "get", storeErr.Operation)
		})
	}
}

func TestTableWrap_UnknownErrorsStayUnclassified(t *testing.T) {
	t.Parallel()

	assert.NoError(t, tasksTable.wrap("get", nil))

	refused := errors.New("connection refused")
	err := tasksTable.wrap("query", refused)
	assert.ErrorIs(t, err, refused)
	assert.False(t, store.IsNotFoundError(err))
	assert.False(t, store.IsDuplicateError(err))

	serialization := newPgError("40001", "")
	err = usersTable.wrap("update", serialization)
	assert.ErrorIs(t, err, serialization)
	assert.Contains(t, err.Error(), "database error 40001")
	assert.False(t, errors.Is(err, store.ErrInvalidEntity))
}

func TestTableCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, tasksTable.checkRowsAffected("delete", stubResult{rowsAffected: 1}))
	assert.ErrorIs(t, tasksTable.checkRowsAffected("delete", stubResult{}), store.ErrTaskNotFound)
	assert.ErrorIs(t, usersTable.checkRowsAffected("update", stubResult{}), store.ErrUserNotFound)

	boom := errors.New("driver gone")
	assert.ErrorIs(t, tasksTable.checkRowsAffected("update", stubResult{err: boom}), boom)

	assert.Error(t, tasksTable.checkRowsAffected("update", nil))
}

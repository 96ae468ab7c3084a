package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/elprogramador2024/gestor-tareas/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes raised by the tasks and users constraints.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	notNullViolation    = "23502"
)

// table names the store sentinels a failure on one table maps to.
type table struct {
	entity     string
	notFound   error
	duplicate  error
	foreignKey error
}

var (
	// A task whose owner row is missing violates tasks_owner_user_name_fkey.
	tasksTable = table{
		entity:     "task",
		notFound:   store.ErrTaskNotFound,
		duplicate:  store.ErrTaskIDExists,
		foreignKey: store.ErrUserNotFound,
	}
	// A user still owning tasks cannot be deleted (ON DELETE RESTRICT).
	usersTable = table{
		entity:     "user",
		notFound:   store.ErrUserNotFound,
		duplicate:  store.ErrUserNameExists,
		foreignKey: store.ErrReferenced,
	}
)

// wrap classifies err from op and returns it as a *store.StoreError whose
// cause matches the store sentinel for the failure. Unknown driver errors
// are kept as the cause unchanged.
func (t table) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	message, cause := t.classify(err)
	return store.NewStoreError(t.entity, op, message, cause)
}

func (t table) classify(err error) (string, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return "no matching row", t.notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "database error", err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return "unique constraint " + pgErr.ConstraintName, fmt.Errorf("%w: %v", t.duplicate, err)
	case foreignKeyViolation:
		return "foreign key " + pgErr.ConstraintName, fmt.Errorf("%w: %v", t.foreignKey, err)
	case checkViolation:
		return "check constraint " + pgErr.ConstraintName, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	case notNullViolation:
		return "null value in " + pgErr.ColumnName, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return "database error " + pgErr.Code, err
}

// checkRowsAffected returns the table's not-found sentinel when result
// touched no rows.
func (t table) checkRowsAffected(op string, result sql.Result) error {
	if result == nil {
		return fmt.Errorf("%s %s: nil result", op, t.entity)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return t.wrap(op, err)
	}
	if n == 0 {
		return t.notFound
	}
	return nil
}

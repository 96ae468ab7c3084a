package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
)

// Roles are read back as a comma-joined string so database/sql can scan them.
const userColumns = `id, user_name, email, hashed_password, array_to_string(roles, ','), created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var roles string
	if err := row.Scan(
		&u.ID,
		&u.UserName,
		&u.Email,
		&u.HashedPassword,
		&roles,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	for _, r := range strings.Split(roles, ",") {
		if r != "" {
			u.Roles = append(u.Roles, domain.Role(r))
		}
	}
	return &u, nil
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (user_name, email, hashed_password, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		user.UserName, user.Email, user.HashedPassword, roleStrings(user.Roles),
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		wrapped := usersTable.wrap("create", err)
		if store.IsDuplicateError(wrapped) {
			log.Debug("user name already exists", slog.String("user_name", user.UserName))
			return wrapped
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_name", user.UserName))
		return wrapped
	}

	user.Password = ""
	log.Info("user created", slog.String("user_name", user.UserName))
	return nil
}

// GetByUserName implements store.UserStore.GetByUserName.
func (s *PostgresUserStore) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String("user_name", userName))
		return nil, usersTable.wrap("get", err)
	}
	return user, nil
}

// List implements store.UserStore.List.
func (s *PostgresUserStore) List(ctx context.Context) ([]domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_name ASC`)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, usersTable.wrap("list", err)
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, usersTable.wrap("list", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, usersTable.wrap("list", err)
	}
	return users, nil
}

// Update implements store.UserStore.Update.
// An empty HashedPassword keeps the stored one.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $1,
		    roles = $2,
		    hashed_password = COALESCE(NULLIF($3, ''), hashed_password),
		    updated_at = $4
		WHERE user_name = $5
	`,
		user.Email, roleStrings(user.Roles), user.HashedPassword, user.UpdatedAt, user.UserName,
	)
	if err != nil {
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_name", user.UserName))
		return usersTable.wrap("update", err)
	}
	return usersTable.checkRowsAffected("update", result)
}

// Delete implements store.UserStore.Delete.
// The tasks foreign key is ON DELETE RESTRICT, so owners cannot be removed.
func (s *PostgresUserStore) Delete(ctx context.Context, userName string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_name = $1`, userName)
	if err != nil {
		wrapped := usersTable.wrap("delete", err)
		if errors.Is(wrapped, store.ErrReferenced) {
			return wrapped
		}
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_name", userName))
		return wrapped
	}
	return usersTable.checkRowsAffected("delete", result)
}

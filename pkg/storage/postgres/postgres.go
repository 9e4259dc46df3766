// Package postgres provides a PostgreSQL implementation of the storage
// interfaces. It uses pgx/v5 for connection pooling and enforces owner
// scoping and uniqueness at the query level.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser inserts a new user record.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// UserByEmail retrieves a user by exact email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*api.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users WHERE email = $1
	`, email))
}

// UserByID retrieves a user by ID.
func (s *Store) UserByID(ctx context.Context, id string) (*api.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users WHERE id = $1
	`, id))
}

func (s *Store) scanUser(row pgx.Row) (*api.User, error) {
	var u api.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// CreateList inserts a new task list. The (owner_id, name) unique index
// enforces per-owner name uniqueness.
func (s *Store) CreateList(ctx context.Context, l *api.TaskList) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO task_lists (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, l.ID, l.Name, l.OwnerID, l.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting list: %w", err)
	}
	return nil
}

// ListByID retrieves a list scoped to its owner. A list owned by someone
// else scans as no rows, identical to a missing id.
func (s *Store) ListByID(ctx context.Context, ownerID, listID string) (*api.TaskList, error) {
	var l api.TaskList
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at
		FROM task_lists WHERE id = $1 AND owner_id = $2
	`, listID, ownerID).Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying list: %w", err)
	}
	return &l, nil
}

// ListsByOwner returns the owner's lists, oldest first.
func (s *Store) ListsByOwner(ctx context.Context, ownerID string) ([]*api.TaskList, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, owner_id, created_at
		FROM task_lists WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}
	defer rows.Close()

	var out []*api.TaskList
	for rows.Next() {
		var l api.TaskList
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning list: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// DeleteList removes an owned list; ON DELETE CASCADE removes its tasks.
func (s *Store) DeleteList(ctx context.Context, ownerID, listID string) error {
	result, err := s.pool.Exec(ctx, `
		DELETE FROM task_lists WHERE id = $1 AND owner_id = $2
	`, listID, ownerID)
	if err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateTask inserts a new task under its parent list.
func (s *Store) CreateTask(ctx context.Context, t *api.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, list_id, title, details, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.ListID, t.Title, t.Details, t.DueDate, string(t.Status), t.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// TaskByID retrieves a task with ownership resolved through the parent
// list in a single join. The task row alone never authorizes access.
func (s *Store) TaskByID(ctx context.Context, ownerID, taskID string) (*api.Task, error) {
	var t api.Task
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT t.id, t.list_id, t.title, t.details, t.due_date, t.status, t.created_at
		FROM tasks t
		JOIN task_lists l ON l.id = t.list_id
		WHERE t.id = $1 AND l.owner_id = $2
	`, taskID, ownerID).Scan(&t.ID, &t.ListID, &t.Title, &t.Details, &t.DueDate, &status, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	t.Status = api.TaskStatus(status)
	return &t, nil
}

// TasksByList returns the tasks of a list, oldest first.
func (s *Store) TasksByList(ctx context.Context, listID string) ([]*api.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, list_id, title, details, due_date, status, created_at
		FROM tasks WHERE list_id = $1
		ORDER BY created_at ASC, id ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var out []*api.Task
	for rows.Next() {
		var t api.Task
		var status string
		if err := rows.Scan(&t.ID, &t.ListID, &t.Title, &t.Details, &t.DueDate, &status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Status = api.TaskStatus(status)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// UpdateTaskStatus sets the task status and returns the updated record.
func (s *Store) UpdateTaskStatus(ctx context.Context, taskID string, status api.TaskStatus) (*api.Task, error) {
	var t api.Task
	var got string
	err := s.pool.QueryRow(ctx, `
		UPDATE tasks SET status = $2 WHERE id = $1
		RETURNING id, list_id, title, details, due_date, status, created_at
	`, taskID, string(status)).Scan(&t.ID, &t.ListID, &t.Title, &t.Details, &t.DueDate, &got, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	t.Status = api.TaskStatus(got)
	return &t, nil
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isUniqueViolation checks for a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL FK violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

package storage

import (
	"context"

	"github.com/listd/listd/pkg/api"
)

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the email
	// is already registered.
	CreateUser(ctx context.Context, u *api.User) error

	// UserByEmail returns the user with the given email (case-sensitive
	// as stored), or ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*api.User, error)

	// UserByID returns the user with the given ID, or ErrNotFound.
	UserByID(ctx context.Context, id string) (*api.User, error)
}

// ListStore persists task lists. Every lookup that takes an ownerID is
// owner-filtered: records belonging to other owners are invisible.
type ListStore interface {
	// CreateList inserts a new list. Returns ErrConflict if the owner
	// already has a list with the same name.
	CreateList(ctx context.Context, l *api.TaskList) error

	// ListByID returns the list with the given ID if it is owned by
	// ownerID, or ErrNotFound.
	ListByID(ctx context.Context, ownerID, listID string) (*api.TaskList, error)

	// ListsByOwner returns all lists owned by ownerID, oldest first.
	ListsByOwner(ctx context.Context, ownerID string) ([]*api.TaskList, error)

	// DeleteList removes the list with the given ID if it is owned by
	// ownerID, cascading to its tasks. Returns ErrNotFound otherwise.
	DeleteList(ctx context.Context, ownerID, listID string) error
}

// TaskStore persists tasks. Ownership is transitive: the owner filter on
// task lookups joins through the parent list.
type TaskStore interface {
	// CreateTask inserts a new task under its ListID.
	CreateTask(ctx context.Context, t *api.Task) error

	// TaskByID returns the task with the given ID if its parent list is
	// owned by ownerID, or ErrNotFound. Implementations must resolve
	// ownership through the parent list in a single lookup, never from
	// the task record alone.
	TaskByID(ctx context.Context, ownerID, taskID string) (*api.Task, error)

	// TasksByList returns all tasks of the given list, oldest first.
	// Callers must have authorized access to the list first.
	TasksByList(ctx context.Context, listID string) ([]*api.Task, error)

	// UpdateTaskStatus sets the status of the task with the given ID and
	// returns the updated record, or ErrNotFound.
	UpdateTaskStatus(ctx context.Context, taskID string, status api.TaskStatus) (*api.Task, error)

	// DeleteTask removes the task with the given ID, or returns ErrNotFound.
	DeleteTask(ctx context.Context, taskID string) error
}

// Store bundles the three stores; both implementations satisfy it.
type Store interface {
	UserStore
	ListStore
	TaskStore
}

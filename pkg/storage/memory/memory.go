// Package memory provides an in-memory implementation of the storage
// interfaces for testing and lightweight deployments. All data is lost
// when the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/storage"
)

// Store is an in-memory storage.Store guarded by a single RWMutex.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*api.User     // id -> user
	usersByEmail map[string]string        // email -> id
	lists        map[string]*api.TaskList // id -> list
	tasks        map[string]*api.Task     // id -> task
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]*api.User),
		usersByEmail: make(map[string]string),
		lists:        make(map[string]*api.TaskList),
		tasks:        make(map[string]*api.Task),
	}
}

// CreateUser inserts a new user, enforcing email uniqueness.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return storage.ErrConflict
	}
	if _, exists := s.users[u.ID]; exists {
		return storage.ErrConflict
	}

	cp := *u
	s.users[cp.ID] = &cp
	s.usersByEmail[cp.Email] = cp.ID
	return nil
}

// UserByEmail returns the user registered under email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// UserByID returns the user with the given ID.
func (s *Store) UserByID(ctx context.Context, id string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// CreateList inserts a new list, enforcing per-owner name uniqueness.
func (s *Store) CreateList(ctx context.Context, l *api.TaskList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.lists {
		if existing.OwnerID == l.OwnerID && existing.Name == l.Name {
			return storage.ErrConflict
		}
	}
	if _, exists := s.lists[l.ID]; exists {
		return storage.ErrConflict
	}

	cp := *l
	s.lists[cp.ID] = &cp
	return nil
}

// ListByID returns the list only when it is owned by ownerID.
func (s *Store) ListByID(ctx context.Context, ownerID, listID string) (*api.TaskList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[listID]
	if !ok || l.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

// ListsByOwner returns ownerID's lists, oldest first.
func (s *Store) ListsByOwner(ctx context.Context, ownerID string) ([]*api.TaskList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.TaskList
	for _, l := range s.lists {
		if l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteList removes an owned list and cascades to its tasks.
func (s *Store) DeleteList(ctx context.Context, ownerID, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[listID]
	if !ok || l.OwnerID != ownerID {
		return storage.ErrNotFound
	}

	delete(s.lists, listID)
	for id, t := range s.tasks {
		if t.ListID == listID {
			delete(s.tasks, id)
		}
	}
	return nil
}

// CreateTask inserts a new task. The parent list must exist.
func (s *Store) CreateTask(ctx context.Context, t *api.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[t.ListID]; !ok {
		return storage.ErrNotFound
	}
	if _, exists := s.tasks[t.ID]; exists {
		return storage.ErrConflict
	}

	cp := *t
	s.tasks[cp.ID] = &cp
	return nil
}

// TaskByID returns the task only when its parent list is owned by ownerID.
func (s *Store) TaskByID(ctx context.Context, ownerID, taskID string) (*api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	l, ok := s.lists[t.ListID]
	if !ok || l.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// TasksByList returns the tasks of listID, oldest first.
func (s *Store) TasksByList(ctx context.Context, listID string) ([]*api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Task
	for _, t := range s.tasks {
		if t.ListID == listID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateTaskStatus sets the task status and returns the updated record.
func (s *Store) UpdateTaskStatus(ctx context.Context, taskID string, status api.TaskStatus) (*api.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	t.Status = status
	cp := *t
	return &cp, nil
}

// DeleteTask removes the task with the given ID.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

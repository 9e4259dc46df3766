// Package authz implements the ownership policy for lists and tasks.
//
// Authorization is a stateless predicate evaluated on every call: the
// caller identity resolved by the authentication gate is checked against
// the persisted ownership facts, and nothing is cached between requests.
// This is the only package allowed to turn an ownership failure into a
// client-facing error, so the collapsing policy lives in exactly one
// place: a resource that exists but belongs to someone else is reported
// as not found, indistinguishable from a resource that never existed.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/debug"
	"github.com/listd/listd/pkg/observability"
	"github.com/listd/listd/pkg/storage"
)

// Authorizer decides per-resource access for a resolved caller identity.
type Authorizer struct {
	lists storage.ListStore
	tasks storage.TaskStore
}

// New creates an Authorizer over the given stores.
func New(lists storage.ListStore, tasks storage.TaskStore) *Authorizer {
	return &Authorizer{lists: lists, tasks: tasks}
}

// RequireList returns the list with the given ID if it is owned by
// callerID. Both "does not exist" and "owned by someone else" yield the
// same NotFound error.
func (a *Authorizer) RequireList(ctx context.Context, callerID, listID string) (*api.TaskList, error) {
	l, err := a.lists.ListByID(ctx, callerID, listID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.AuthzDeniedTotal.WithLabelValues("list").Inc()
			debug.Log("authz", "list access denied", "caller", callerID, "list", listID)
			return nil, api.NewNotFoundError("List not found")
		}
		return nil, fmt.Errorf("authorizing list access: %w", err)
	}
	return l, nil
}

// RequireTask returns the task with the given ID if its parent list is
// owned by callerID. Ownership is resolved through the parent list in a
// single store lookup; the task record alone never authorizes access.
func (a *Authorizer) RequireTask(ctx context.Context, callerID, taskID string) (*api.Task, error) {
	t, err := a.tasks.TaskByID(ctx, callerID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			observability.AuthzDeniedTotal.WithLabelValues("task").Inc()
			debug.Log("authz", "task access denied", "caller", callerID, "task", taskID)
			return nil, api.NewNotFoundError("Task not found")
		}
		return nil, fmt.Errorf("authorizing task access: %w", err)
	}
	return t, nil
}

// CanAccessList reports whether callerID may access the list.
func (a *Authorizer) CanAccessList(ctx context.Context, callerID, listID string) bool {
	_, err := a.RequireList(ctx, callerID, listID)
	return err == nil
}

// CanAccessTask reports whether callerID may access the task.
func (a *Authorizer) CanAccessTask(ctx context.Context, callerID, taskID string) bool {
	_, err := a.RequireTask(ctx, callerID, taskID)
	return err == nil
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/listd/listd/pkg/account"
	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/auth"
	"github.com/listd/listd/pkg/authz"
	"github.com/listd/listd/pkg/insights"
	"github.com/listd/listd/pkg/storage"
	"github.com/listd/listd/pkg/transport"
)

// Adapter serves the listd API over HTTP. It routes requests to the
// account, storage, authorization, and insight services and serializes
// results as JSON.
//
// Resource IDs taken from the path are never format-checked here: an ID
// that matches nothing produces the same 404 as an ID owned by someone
// else, so the response shape carries no information about what exists.
type Adapter struct {
	accounts *account.Service
	store    storage.Store
	authz    *authz.Authorizer
	insights *insights.Service // nil when the AI endpoints are disabled
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MB
	}
}

// NewAdapter creates an HTTP adapter wiring all routes. The insight
// service is optional; when nil, the /ai endpoints report the feature as
// unavailable.
func NewAdapter(accounts *account.Service, store storage.Store, az *authz.Authorizer, ins *insights.Service, cfg Config) *Adapter {
	a := &Adapter{
		accounts: accounts,
		store:    store,
		authz:    az,
		insights: ins,
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /auth/register", a.handleRegister)
	a.mux.HandleFunc("POST /auth/login", a.handleLogin)
	a.mux.HandleFunc("GET /me", a.handleMe)
	a.mux.HandleFunc("GET /lists", a.handleListLists)
	a.mux.HandleFunc("POST /lists", a.handleCreateList)
	a.mux.HandleFunc("DELETE /lists/{id}", a.handleDeleteList)
	a.mux.HandleFunc("GET /lists/{id}/tasks", a.handleListTasks)
	a.mux.HandleFunc("POST /lists/{id}/tasks", a.handleCreateTask)
	a.mux.HandleFunc("GET /tasks/{id}", a.handleGetTask)
	a.mux.HandleFunc("PATCH /tasks/{id}", a.handleUpdateTask)
	a.mux.HandleFunc("DELETE /tasks/{id}", a.handleDeleteTask)
	a.mux.HandleFunc("GET /ai/home", a.handleInsightHome)
	a.mux.HandleFunc("GET /ai/lists/{id}", a.handleInsightList)
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)

	return a
}

// Mux returns the route multiplexer. The server composes the middleware
// chain (recovery, request ID, logging, metrics, authentication) around it.
func (a *Adapter) Mux() *http.ServeMux {
	return a.mux
}

// decode reads a JSON body into dst with the configured size limit.
// On failure it writes the generic payload error and returns false.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("Invalid payload"),
				http.StatusRequestEntityTooLarge)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("Invalid payload"))
		return false
	}
	return true
}

// caller returns the authenticated user ID. The gate guarantees one is
// present on every non-bypass route; a miss here is a wiring bug.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil || id.Subject == "" {
		transport.WriteAPIError(w, api.NewUnauthorizedError("Unauthorized"))
		return "", false
	}
	return id.Subject, true
}

// handleRegister handles POST /auth/register.
func (a *Adapter) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.accounts.Register(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, resp)
}

// handleLogin handles POST /auth/login.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.accounts.Login(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleMe handles GET /me.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

// handleListLists handles GET /lists.
func (a *Adapter) handleListLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	lists, err := a.store.ListsByOwner(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	if lists == nil {
		lists = []*api.TaskList{}
	}
	transport.WriteJSON(w, http.StatusOK, lists)
}

// handleCreateList handles POST /lists.
func (a *Adapter) handleCreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req api.CreateListRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	list := &api.TaskList{
		ID:        api.NewListID(),
		Name:      req.Name,
		OwnerID:   userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.CreateList(r.Context(), list); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			transport.WriteAPIError(w, api.NewConflictError("List name already exists"))
			return
		}
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, list)
}

// handleDeleteList handles DELETE /lists/{id}. Tasks cascade with the list.
func (a *Adapter) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	listID := r.PathValue("id")

	if _, err := a.authz.RequireList(r.Context(), userID, listID); err != nil {
		transport.WriteError(w, err)
		return
	}
	if err := a.store.DeleteList(r.Context(), userID, listID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewNotFoundError("List not found"))
			return
		}
		transport.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListTasks handles GET /lists/{id}/tasks.
func (a *Adapter) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	list, err := a.authz.RequireList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	tasks, err := a.store.TasksByList(r.Context(), list.ID)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*api.Task{}
	}
	transport.WriteJSON(w, http.StatusOK, tasks)
}

// handleCreateTask handles POST /lists/{id}/tasks. Ownership of the parent
// list is checked before anything is written.
func (a *Adapter) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req api.CreateTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	list, err := a.authz.RequireList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	task := &api.Task{
		ID:        api.NewTaskID(),
		ListID:    list.ID,
		Title:     req.Title,
		Details:   req.Details,
		DueDate:   req.Due,
		Status:    api.TaskStatusTodo,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.CreateTask(r.Context(), task); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// List vanished between the ownership check and the insert.
			transport.WriteAPIError(w, api.NewNotFoundError("List not found"))
			return
		}
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, task)
}

// handleGetTask handles GET /tasks/{id}.
func (a *Adapter) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	task, err := a.authz.RequireTask(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, task)
}

// handleUpdateTask handles PATCH /tasks/{id}.
func (a *Adapter) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	task, err := a.authz.RequireTask(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	updated, err := a.store.UpdateTaskStatus(r.Context(), task.ID, req.Status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewNotFoundError("Task not found"))
			return
		}
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, updated)
}

// handleDeleteTask handles DELETE /tasks/{id}.
func (a *Adapter) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	task, err := a.authz.RequireTask(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	if err := a.store.DeleteTask(r.Context(), task.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewNotFoundError("Task not found"))
			return
		}
		transport.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleInsightHome handles GET /ai/home.
func (a *Adapter) handleInsightHome(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if a.insights == nil {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("AI features are disabled"),
			http.StatusNotImplemented)
		return
	}

	result, err := a.insights.Home(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, result)
}

// handleInsightList handles GET /ai/lists/{id}.
func (a *Adapter) handleInsightList(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if a.insights == nil {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("AI features are disabled"),
			http.StatusNotImplemented)
		return
	}

	result, err := a.insights.List(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, result)
}

// handleHealthz handles GET /healthz: process liveness only.
func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz handles GET /readyz: readiness includes the store when it
// can report health (the postgres store can, the memory store is always
// ready).
func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if hc, ok := a.store.(interface{ HealthCheck(context.Context) error }); ok {
		if err := hc.HealthCheck(r.Context()); err != nil {
			transport.WriteErrorResponse(w,
				api.NewServerError("Not ready"),
				http.StatusServiceUnavailable)
			return
		}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

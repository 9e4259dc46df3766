package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/storage"
)

func init() {
	// Configure testcontainers to use podman when no Docker host is set.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a migrated Store.
// Tests are skipped when no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("listd_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func seedUser(t *testing.T, s *Store, email string) *api.User {
	t.Helper()
	u := &api.User{
		ID:           api.NewUserID(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}

func seedList(t *testing.T, s *Store, ownerID, name string) *api.TaskList {
	t.Helper()
	l := &api.TaskList{
		ID:        api.NewListID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.CreateList(context.Background(), l); err != nil {
		t.Fatalf("seeding list %s: %v", name, err)
	}
	return l
}

func TestUsers_RoundTripAndConflict(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice@example.com")

	got, err := s.UserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != u.PasswordHash {
		t.Errorf("round trip mismatch: got %+v", got)
	}

	dup := *u
	dup.ID = api.NewUserID()
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}

	if _, err := s.UserByID(ctx, api.NewUserID()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestLists_OwnerScopingAndUniqueness(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	l := seedList(t, s, alice.ID, "Groceries")

	if _, err := s.ListByID(ctx, alice.ID, l.ID); err != nil {
		t.Errorf("owner lookup: %v", err)
	}
	if _, err := s.ListByID(ctx, bob.ID, l.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("foreign lookup: err = %v, want ErrNotFound", err)
	}

	// Same name, same owner: conflict. Same name, other owner: fine.
	err := s.CreateList(ctx, &api.TaskList{
		ID: api.NewListID(), Name: "Groceries", OwnerID: alice.ID, CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate (owner, name): err = %v, want ErrConflict", err)
	}
	if err := s.CreateList(ctx, &api.TaskList{
		ID: api.NewListID(), Name: "Groceries", OwnerID: bob.ID, CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Errorf("same name different owner: %v", err)
	}
}

func TestTasks_TransitiveOwnershipAndCascade(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	l := seedList(t, s, alice.ID, "Work")

	details := "quarterly numbers"
	task := &api.Task{
		ID:        api.NewTaskID(),
		ListID:    l.ID,
		Title:     "Report",
		Details:   &details,
		DueDate:   time.Now().UTC().Add(48 * time.Hour).Truncate(time.Microsecond),
		Status:    api.TaskStatusTodo,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.TaskByID(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("owner TaskByID: %v", err)
	}
	if got.Details == nil || *got.Details != details {
		t.Errorf("details = %v, want %q", got.Details, details)
	}

	if _, err := s.TaskByID(ctx, bob.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("foreign TaskByID: err = %v, want ErrNotFound", err)
	}

	// Creating under a nonexistent list hits the FK, reported as not found.
	err = s.CreateTask(ctx, &api.Task{
		ID: api.NewTaskID(), ListID: api.NewListID(), Title: "Orphan",
		DueDate: time.Now().UTC(), Status: api.TaskStatusTodo, CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("orphan task: err = %v, want ErrNotFound", err)
	}

	// Deleting the list cascades to the task.
	if err := s.DeleteList(ctx, alice.ID, l.ID); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if _, err := s.TaskByID(ctx, alice.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("task survived cascade: err = %v", err)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	l := seedList(t, s, alice.ID, "Inbox")
	task := &api.Task{
		ID: api.NewTaskID(), ListID: l.ID, Title: "Call",
		DueDate: time.Now().UTC(), Status: api.TaskStatusTodo, CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	updated, err := s.UpdateTaskStatus(ctx, task.ID, api.TaskStatusDone)
	if err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if updated.Status != api.TaskStatusDone {
		t.Errorf("status = %s, want DONE", updated.Status)
	}

	if _, err := s.UpdateTaskStatus(ctx, api.NewTaskID(), api.TaskStatusDone); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing task: err = %v, want ErrNotFound", err)
	}
}

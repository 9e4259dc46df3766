package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/storage"
)

func newUser(email string) *api.User {
	return &api.User{
		ID:           api.NewUserID(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:    time.Now().UTC(),
	}
}

func newList(ownerID, name string, at time.Time) *api.TaskList {
	return &api.TaskList{
		ID:        api.NewListID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: at,
	}
}

func TestCreateUser_EmailConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, newUser("a@x.com")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.CreateUser(ctx, newUser("a@x.com"))
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}
}

func TestUserByEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("b@x.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, err := s.UserByEmail(ctx, "b@x.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %s, want %s", got.ID, u.ID)
	}

	if _, err := s.UserByEmail(ctx, "missing@x.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing email: err = %v, want ErrNotFound", err)
	}
}

func TestListOwnerScoping(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice, bob := newUser("alice@x.com"), newUser("bob@x.com")
	s.CreateUser(ctx, alice)
	s.CreateUser(ctx, bob)

	l := newList(alice.ID, "Groceries", time.Now().UTC())
	if err := s.CreateList(ctx, l); err != nil {
		t.Fatalf("CreateList: %v", err)
	}

	if _, err := s.ListByID(ctx, alice.ID, l.ID); err != nil {
		t.Errorf("owner lookup: %v", err)
	}

	// Bob must see the exact same error as for a nonexistent id.
	_, errForeign := s.ListByID(ctx, bob.ID, l.ID)
	_, errMissing := s.ListByID(ctx, bob.ID, api.NewListID())
	if !errors.Is(errForeign, storage.ErrNotFound) || !errors.Is(errMissing, storage.ErrNotFound) {
		t.Errorf("foreign = %v, missing = %v, want ErrNotFound for both", errForeign, errMissing)
	}
}

func TestCreateList_NameUniquePerOwner(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice, bob := newUser("alice@x.com"), newUser("bob@x.com")
	s.CreateUser(ctx, alice)
	s.CreateUser(ctx, bob)

	if err := s.CreateList(ctx, newList(alice.ID, "Groceries", time.Now().UTC())); err != nil {
		t.Fatalf("alice first list: %v", err)
	}
	if err := s.CreateList(ctx, newList(alice.ID, "Groceries", time.Now().UTC())); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("same owner duplicate: err = %v, want ErrConflict", err)
	}
	if err := s.CreateList(ctx, newList(bob.ID, "Groceries", time.Now().UTC())); err != nil {
		t.Errorf("different owner same name: %v", err)
	}
}

func TestListsByOwner_Ordering(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("c@x.com")
	s.CreateUser(ctx, u)

	base := time.Now().UTC()
	s.CreateList(ctx, newList(u.ID, "second", base.Add(time.Minute)))
	s.CreateList(ctx, newList(u.ID, "first", base))

	lists, err := s.ListsByOwner(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 2 || lists[0].Name != "first" || lists[1].Name != "second" {
		t.Errorf("unexpected ordering: %+v", lists)
	}
}

func TestDeleteList_CascadesTasks(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("d@x.com")
	s.CreateUser(ctx, u)
	l := newList(u.ID, "Chores", time.Now().UTC())
	s.CreateList(ctx, l)

	task := &api.Task{
		ID:        api.NewTaskID(),
		ListID:    l.ID,
		Title:     "Dishes",
		DueDate:   time.Now().UTC().Add(24 * time.Hour),
		Status:    api.TaskStatusTodo,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteList(ctx, u.ID, l.ID); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if _, err := s.TaskByID(ctx, u.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("task survived list deletion: err = %v", err)
	}
}

func TestTaskByID_JoinsThroughParentList(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice, bob := newUser("alice@x.com"), newUser("bob@x.com")
	s.CreateUser(ctx, alice)
	s.CreateUser(ctx, bob)
	l := newList(alice.ID, "Work", time.Now().UTC())
	s.CreateList(ctx, l)

	task := &api.Task{
		ID:        api.NewTaskID(),
		ListID:    l.ID,
		Title:     "Report",
		DueDate:   time.Now().UTC(),
		Status:    api.TaskStatusTodo,
		CreatedAt: time.Now().UTC(),
	}
	s.CreateTask(ctx, task)

	if _, err := s.TaskByID(ctx, alice.ID, task.ID); err != nil {
		t.Errorf("owner task lookup: %v", err)
	}
	if _, err := s.TaskByID(ctx, bob.ID, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("foreign task lookup: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("e@x.com")
	s.CreateUser(ctx, u)
	l := newList(u.ID, "Inbox", time.Now().UTC())
	s.CreateList(ctx, l)

	task := &api.Task{
		ID:        api.NewTaskID(),
		ListID:    l.ID,
		Title:     "Call",
		DueDate:   time.Now().UTC(),
		Status:    api.TaskStatusTodo,
		CreatedAt: time.Now().UTC(),
	}
	s.CreateTask(ctx, task)

	updated, err := s.UpdateTaskStatus(ctx, task.ID, api.TaskStatusDone)
	if err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if updated.Status != api.TaskStatusDone {
		t.Errorf("status = %s, want DONE", updated.Status)
	}

	if _, err := s.UpdateTaskStatus(ctx, api.NewTaskID(), api.TaskStatusDone); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing task update: err = %v, want ErrNotFound", err)
	}
}

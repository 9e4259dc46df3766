package api

import "time"

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	TaskStatusTodo TaskStatus = "TODO"
	TaskStatusDone TaskStatus = "DONE"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusTodo || s == TaskStatusDone
}

// User is a registered account. The password hash is kept out of every
// JSON response.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TaskList is a named collection of tasks owned by exactly one user.
// Names are unique per owner, not globally.
type TaskList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task belongs to exactly one list. Its effective owner is the owner of
// its parent list.
type Task struct {
	ID        string     `json:"id"`
	ListID    string     `json:"listId"`
	Title     string     `json:"title"`
	Details   *string    `json:"details,omitempty"`
	DueDate   time.Time  `json:"dueDate"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AuthResponse is returned by registration and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

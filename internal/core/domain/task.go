package domain

import (
	"fmt"
	"strings"
)

// TaskStatus represents the workflow state of a task. The values are the
// strings the API puts on the wire.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// ErrUnknownStatus is returned by ParseTaskStatus for unrecognised input.
var ErrUnknownStatus = fmt.Errorf("%w: unknown task status", ErrValidation)

// ParseTaskStatus accepts either the wire value ("In Progress") or a
// snake_case shorthand ("in_progress"), case-insensitively.
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "todo", "to do":
		return StatusTodo, nil
	case "in progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is the client's cached copy of a task owned by the remote API.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// TaskCreate is the body of POST /tasks.
type TaskCreate struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}

// TaskUpdate is the body of PUT /tasks/{id}. Nil fields are left untouched
// by the server.
type TaskUpdate struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}

// TaskFilters narrows GET /tasks. Zero values are not sent.
type TaskFilters struct {
	Status TaskStatus
	Search string
}

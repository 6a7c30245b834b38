package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTaskStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"todo":        StatusTodo,
		"To Do":       StatusTodo,
		"in_progress": StatusInProgress,
		"In Progress": StatusInProgress,
		"in-progress": StatusInProgress,
		"DONE":        StatusDone,
	}
	for in, want := range cases {
		got, err := ParseTaskStatus(in)
		if err != nil {
			t.Fatalf("ParseTaskStatus(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTaskStatus(%q) = %q, want %q", in, got, want)
		}
	}

	_, err := ParseTaskStatus("blocked")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSession_Derived(t *testing.T) {
	user := &User{ID: 1, Role: RoleUser}
	admin := &User{ID: 2, Role: RoleAdmin}

	if (Session{}).IsAuthenticated() {
		t.Fatalf("empty session must not be authenticated")
	}
	if (Session{User: user}).IsAuthenticated() {
		t.Fatalf("user without token must not be authenticated")
	}
	if (Session{Token: "tok"}).IsAuthenticated() {
		t.Fatalf("token without user must not be authenticated")
	}
	if !(Session{User: user, Token: "tok"}).IsAuthenticated() {
		t.Fatalf("user with token must be authenticated")
	}
	if (Session{User: user, Token: "tok"}).IsAdmin() {
		t.Fatalf("user role must not be admin")
	}
	if !(Session{User: admin}).IsAdmin() {
		t.Fatalf("admin role must be admin")
	}
}

func TestAPIError_Is(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{401, ErrUnauthorized},
		{404, ErrNotFound},
		{422, ErrValidation},
		{400, ErrValidation},
		{403, ErrValidation},
		{500, ErrServer},
		{503, ErrServer},
	}
	for _, tc := range cases {
		err := error(&APIError{StatusCode: tc.code, Message: "boom"})
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.code, tc.want, err)
		}
		if StatusCode(err) != tc.code {
			t.Fatalf("status %d: StatusCode returned %d", tc.code, StatusCode(err))
		}
	}
}

func TestTask_DecodesNaiveTimestamps(t *testing.T) {
	raw := `{"id":1,"title":"Write report","description":null,"status":"In Progress","owner_id":7,
		"created_at":"2024-05-01T10:00:00.123456","updated_at":"2024-05-02T08:30:00Z"}`

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.Status != StatusInProgress || task.OwnerID != 7 || task.Description != nil {
		t.Fatalf("unexpected task: %+v", task)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)
	if !task.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v, want %v", task.CreatedAt, want)
	}
	if task.UpdatedAt.Hour() != 8 {
		t.Fatalf("unexpected updated_at: %v", task.UpdatedAt)
	}
}

func TestUser_DisplayName(t *testing.T) {
	name := "Jane Smith"
	if got := (&User{Email: "j@x.com", FullName: &name}).DisplayName(); got != name {
		t.Fatalf("DisplayName = %q", got)
	}
	if got := (&User{Email: "j@x.com"}).DisplayName(); got != "j@x.com" {
		t.Fatalf("DisplayName = %q", got)
	}
}

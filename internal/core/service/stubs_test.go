package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

type stubClient struct {
	mu        sync.Mutex
	calls     []ports.RequestSpec
	sendFn    func(ctx context.Context, spec ports.RequestSpec) (*ports.Response, error)
	refreshFn func(ctx context.Context) (string, error)
}

func (c *stubClient) Send(ctx context.Context, spec ports.RequestSpec) (*ports.Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, spec)
	c.mu.Unlock()
	return c.sendFn(ctx, spec)
}

func (c *stubClient) Refresh(ctx context.Context) (string, error) {
	return c.refreshFn(ctx)
}

func (c *stubClient) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.calls))
	for _, spec := range c.calls {
		out = append(out, spec.Method+" "+spec.Path)
	}
	return out
}

func jsonResponse(status int, v any) *ports.Response {
	body, _ := json.Marshal(v)
	return &ports.Response{StatusCode: status, Header: http.Header{}, Body: body}
}

type stubStore struct {
	mu    sync.Mutex
	creds domain.Credentials
	err   error
}

func (s *stubStore) Get(context.Context) (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, s.err
}

func (s *stubStore) Save(_ context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return s.err
}

func (s *stubStore) SetAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.AccessToken = token
	return s.err
}

func (s *stubStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = domain.Credentials{}
	return s.err
}

type stubTasks struct {
	listFn         func(ctx context.Context, f domain.TaskFilters) ([]domain.Task, error)
	getFn          func(ctx context.Context, id int64) (*domain.Task, error)
	createFn       func(ctx context.Context, in domain.TaskCreate) (*domain.Task, error)
	updateFn       func(ctx context.Context, id int64, in domain.TaskUpdate) (*domain.Task, error)
	deleteFn       func(ctx context.Context, id int64) error
	updateStatusFn func(ctx context.Context, id int64, s domain.TaskStatus) (*domain.Task, error)
}

func (s *stubTasks) List(ctx context.Context, f domain.TaskFilters) ([]domain.Task, error) {
	return s.listFn(ctx, f)
}

func (s *stubTasks) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.getFn(ctx, id)
}

func (s *stubTasks) Create(ctx context.Context, in domain.TaskCreate) (*domain.Task, error) {
	return s.createFn(ctx, in)
}

func (s *stubTasks) Update(ctx context.Context, id int64, in domain.TaskUpdate) (*domain.Task, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubTasks) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubTasks) UpdateStatus(ctx context.Context, id int64, st domain.TaskStatus) (*domain.Task, error) {
	return s.updateStatusFn(ctx, id, st)
}

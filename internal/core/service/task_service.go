package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

type statusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// TaskService implements ports.TaskService. Client errors are returned
// unchanged.
type TaskService struct {
	client ports.Requester
}

func NewTaskService(client ports.Requester) *TaskService {
	return &TaskService{client: client}
}

func (s *TaskService) List(ctx context.Context, filters domain.TaskFilters) ([]domain.Task, error) {
	query := url.Values{}
	if filters.Status != "" {
		query.Set("status", string(filters.Status))
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	resp, err := s.client.Send(ctx, ports.RequestSpec{Method: http.MethodGet, Path: "/tasks", Query: query})
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := resp.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("%w: decode tasks: %w", domain.ErrServer, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.one(ctx, ports.RequestSpec{Method: http.MethodGet, Path: taskPath(id)})
}

func (s *TaskService) Create(ctx context.Context, input domain.TaskCreate) (*domain.Task, error) {
	return s.one(ctx, ports.RequestSpec{Method: http.MethodPost, Path: "/tasks", Body: input})
}

func (s *TaskService) Update(ctx context.Context, id int64, input domain.TaskUpdate) (*domain.Task, error) {
	return s.one(ctx, ports.RequestSpec{Method: http.MethodPut, Path: taskPath(id), Body: input})
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Send(ctx, ports.RequestSpec{Method: http.MethodDelete, Path: taskPath(id)})
	return err
}

func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error) {
	return s.one(ctx, ports.RequestSpec{
		Method: http.MethodPatch,
		Path:   taskPath(id) + "/status",
		Body:   statusRequest{Status: status},
	})
}

func (s *TaskService) one(ctx context.Context, spec ports.RequestSpec) (*domain.Task, error) {
	resp, err := s.client.Send(ctx, spec)
	if err != nil {
		return nil, err
	}
	var task domain.Task
	if err := resp.Decode(&task); err != nil {
		return nil, fmt.Errorf("%w: decode task: %w", domain.ErrServer, err)
	}
	return &task, nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}

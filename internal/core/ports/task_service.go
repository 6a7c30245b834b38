package ports

import (
	"context"

	"github.com/taskflow/client/internal/core/domain"
)

type TaskService interface {
	List(ctx context.Context, filters domain.TaskFilters) ([]domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, input domain.TaskCreate) (*domain.Task, error)
	Update(ctx context.Context, id int64, input domain.TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error)
}

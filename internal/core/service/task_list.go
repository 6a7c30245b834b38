package service

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

// TaskList keeps an ordered cache of tasks consistent with the last
// successful call. A failed call records its error and leaves the cache as
// it was.
type TaskList struct {
	tasks ports.TaskService
	log   zerolog.Logger

	mu      sync.RWMutex
	items   []domain.Task
	filters domain.TaskFilters
	err     error
}

func NewTaskList(tasks ports.TaskService, log zerolog.Logger) *TaskList {
	return &TaskList{tasks: tasks, log: log}
}

// Tasks returns a copy of the cached tasks.
func (l *TaskList) Tasks() []domain.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

func (l *TaskList) Filters() domain.TaskFilters {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filters
}

// Err is the error of the most recent call, nil after a success.
func (l *TaskList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Fetch replaces the cache with the tasks matching the current filters.
func (l *TaskList) Fetch(ctx context.Context) error {
	items, err := l.tasks.List(ctx, l.Filters())
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.err = err
		return err
	}
	l.items = items
	l.err = nil
	return nil
}

// SetFilters stores f and refetches.
func (l *TaskList) SetFilters(ctx context.Context, f domain.TaskFilters) error {
	l.mu.Lock()
	l.filters = f
	l.mu.Unlock()
	return l.Fetch(ctx)
}

// Create prepends the new task.
func (l *TaskList) Create(ctx context.Context, input domain.TaskCreate) (*domain.Task, error) {
	task, err := l.tasks.Create(ctx, input)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.err = err
		return nil, err
	}
	l.items = append([]domain.Task{*task}, l.items...)
	l.err = nil
	return task, nil
}

func (l *TaskList) Update(ctx context.Context, id int64, input domain.TaskUpdate) (*domain.Task, error) {
	task, err := l.tasks.Update(ctx, id, input)
	return l.replace(task, err)
}

func (l *TaskList) UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error) {
	task, err := l.tasks.UpdateStatus(ctx, id, status)
	return l.replace(task, err)
}

func (l *TaskList) Delete(ctx context.Context, id int64) error {
	err := l.tasks.Delete(ctx, id)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.err = err
		return err
	}
	l.items = slices.DeleteFunc(l.items, func(t domain.Task) bool { return t.ID == id })
	l.err = nil
	return nil
}

func (l *TaskList) replace(task *domain.Task, err error) (*domain.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.err = err
		return nil, err
	}
	if i := slices.IndexFunc(l.items, func(t domain.Task) bool { return t.ID == task.ID }); i >= 0 {
		l.items[i] = *task
	} else {
		l.log.Debug().Int64("task_id", task.ID).Msg("updated task not in cache")
	}
	l.err = nil
	return task, nil
}

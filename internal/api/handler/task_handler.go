package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/client/internal/api/sandbox"
	"github.com/taskflow/client/internal/core/domain"
)

// TaskBackend is the task side of the sandbox.
type TaskBackend interface {
	ListTasks(ctx context.Context, actor sandbox.Actor, filters domain.TaskFilters) ([]domain.Task, error)
	GetTask(ctx context.Context, actor sandbox.Actor, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, actor sandbox.Actor, input domain.TaskCreate) (*domain.Task, error)
	UpdateTask(ctx context.Context, actor sandbox.Actor, id int64, input domain.TaskUpdate) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, actor sandbox.Actor, id int64, status domain.TaskStatus) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor sandbox.Actor, id int64) error
}

type TaskHandler struct {
	backend TaskBackend
}

func NewTaskHandler(backend TaskBackend) *TaskHandler {
	return &TaskHandler{backend: backend}
}

type statusRequest struct {
	Status domain.TaskStatus `json:"status" validate:"required"`
}

func (h *TaskHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	filters := domain.TaskFilters{Search: c.QueryParam("search")}
	if s := c.QueryParam("status"); s != "" {
		filters.Status = domain.TaskStatus(s)
		if !filters.Status.Valid() {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "status: unknown task status")
		}
	}

	tasks, err := h.backend.ListTasks(c.Request().Context(), actor, filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	task, err := h.backend.GetTask(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.TaskCreate
	if err := bindValid(c, &req); err != nil {
		return err
	}

	task, err := h.backend.CreateTask(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var req domain.TaskUpdate
	if err := bindValid(c, &req); err != nil {
		return err
	}

	task, err := h.backend.UpdateTask(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	task, err := h.backend.UpdateTaskStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}
	if err := h.backend.DeleteTask(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func actorAndID(c echo.Context) (sandbox.Actor, int64, error) {
	actor, err := ctxActor(c)
	if err != nil {
		return sandbox.Actor{}, 0, err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return sandbox.Actor{}, 0, err
	}
	return actor, id, nil
}

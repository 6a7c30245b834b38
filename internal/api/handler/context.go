package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/client/internal/api/middleware"
	"github.com/taskflow/client/internal/api/sandbox"
	"github.com/taskflow/client/internal/core/domain"
)

// ctxActor extracts the identity injected by the Auth middleware. A missing
// user id means the route was mounted without Auth.
func ctxActor(c echo.Context) (sandbox.Actor, error) {
	userID, _ := c.Get(middleware.KeyUserID).(int64)
	role, _ := c.Get(middleware.KeyRole).(domain.Role)
	if userID == 0 || role == "" {
		return sandbox.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return sandbox.Actor{UserID: userID, Role: role}, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be a positive integer")
	}
	return id, nil
}

// bindValid binds the JSON body into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/client/internal/api/sandbox"
	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

// AuthBackend is the account side of the sandbox.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AccessToken, error)
	Me(ctx context.Context, actor sandbox.Actor) (*domain.User, error)
	Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type AuthHandler struct {
	backend AuthBackend
}

func NewAuthHandler(backend AuthBackend) *AuthHandler {
	return &AuthHandler{backend: backend}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login exchanges email and password for an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	pair, err := h.backend.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	token, err := h.backend.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	user, err := h.backend.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterInput
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.backend.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// ListUsers is admin-only; the router guards it with RBAC.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.backend.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

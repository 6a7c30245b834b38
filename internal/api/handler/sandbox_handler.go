package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// TokenControl forces token states so clients can exercise their refresh
// handling against the sandbox.
type TokenControl interface {
	ExpireAccessTokens() int
	RevokeRefreshTokens() int
}

type SandboxHandler struct {
	control TokenControl
}

func NewSandboxHandler(control TokenControl) *SandboxHandler {
	return &SandboxHandler{control: control}
}

func (h *SandboxHandler) ExpireAccess(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"revoked": h.control.ExpireAccessTokens()})
}

func (h *SandboxHandler) RevokeRefresh(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"revoked": h.control.RevokeRefreshTokens()})
}

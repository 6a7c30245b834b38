package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/client/internal/api/sandbox"
)

// Context keys set by Auth.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// TokenParser verifies a bearer token of the given kind.
type TokenParser interface {
	Parse(token, kind string) (*sandbox.Claims, error)
}

// Auth validates the access token and injects the caller's identity into
// the context.
func Auth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized("Not authenticated")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorized("Invalid authorization header")
			}

			claims, err := tokens.Parse(parts[1], sandbox.KindAccess)
			if err != nil {
				return unauthorized("Could not validate credentials")
			}
			userID, err := claims.UserID()
			if err != nil {
				return unauthorized("Could not validate credentials")
			}

			c.Set(KeyUserID, userID)
			c.Set(KeyRole, claims.Role)

			return next(c)
		}
	}
}

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/client/internal/api/sandbox"
	"github.com/taskflow/client/internal/core/domain"
)

func issue(t *testing.T, tokens *sandbox.Tokens, kind string) string {
	t.Helper()
	signed, err := tokens.Issue(&domain.User{ID: 42, Role: domain.RoleAdmin}, kind)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, tokens *sandbox.Tokens, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		if c.Get(KeyUserID) != int64(42) {
			t.Fatalf("user_id not set: %v", c.Get(KeyUserID))
		}
		if c.Get(KeyRole) != domain.RoleAdmin {
			t.Fatalf("role not set: %v", c.Get(KeyRole))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := sandbox.NewTokens("secret", time.Minute, time.Hour)

	rec, called := runAuth(t, tokens, "Bearer "+issue(t, tokens, sandbox.KindAccess))
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tokens := sandbox.NewTokens("secret", time.Minute, time.Hour)
	other := sandbox.NewTokens("other-secret", time.Minute, time.Hour)

	revoked := issue(t, tokens, sandbox.KindAccess)
	tokens.Revoke(sandbox.KindAccess)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"garbage":        "Bearer not-a-token",
		"refresh token":  "Bearer " + issue(t, tokens, sandbox.KindRefresh),
		"foreign secret": "Bearer " + issue(t, other, sandbox.KindAccess),
		"revoked access": "Bearer " + revoked,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, called := runAuth(t, tokens, header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

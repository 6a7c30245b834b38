package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

var testUser = domain.User{ID: 7, Email: "a@x.com", Role: domain.RoleUser, IsActive: true}

func loginServer(t *testing.T) func(context.Context, ports.RequestSpec) (*ports.Response, error) {
	t.Helper()
	return func(_ context.Context, spec ports.RequestSpec) (*ports.Response, error) {
		switch spec.Method + " " + spec.Path {
		case "POST /auth/login":
			if !spec.NoRefresh {
				t.Errorf("login must not be subject to refresh")
			}
			body := spec.Body.(loginRequest)
			if body.Email != "a@x.com" || body.Password != "p" {
				return nil, &domain.APIError{StatusCode: http.StatusUnauthorized, Message: "Incorrect email or password"}
			}
			return jsonResponse(http.StatusOK, domain.TokenPair{AccessToken: "A1", RefreshToken: "R1", TokenType: "bearer"}), nil
		case "GET /auth/me":
			return jsonResponse(http.StatusOK, testUser), nil
		}
		t.Fatalf("unexpected call %s %s", spec.Method, spec.Path)
		return nil, nil
	}
}

func TestAuthService_Login_StoresTokensAndFetchesUser(t *testing.T) {
	store := &stubStore{}
	client := &stubClient{sendFn: loginServer(t)}
	svc := NewAuthService(client, store, zerolog.Nop())

	user, err := svc.Login(context.Background(), "a@x.com", "p")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != testUser.ID || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if store.creds != (domain.Credentials{AccessToken: "A1", RefreshToken: "R1"}) {
		t.Fatalf("unexpected stored credentials: %+v", store.creds)
	}
	got := client.paths()
	if len(got) != 2 || got[0] != "POST /auth/login" || got[1] != "GET /auth/me" {
		t.Fatalf("unexpected calls: %v", got)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	store := &stubStore{}
	svc := NewAuthService(&stubClient{sendFn: loginServer(t)}, store, zerolog.Nop())

	_, err := svc.Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !store.creds.Empty() {
		t.Fatalf("expected nothing stored, got %+v", store.creds)
	}
}

func TestAuthService_Login_NetworkError(t *testing.T) {
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return nil, domain.ErrNetwork
	}}
	svc := NewAuthService(client, &stubStore{}, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "a@x.com", "p"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestAuthService_Login_MissingAccessToken(t *testing.T) {
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		return jsonResponse(http.StatusOK, map[string]string{"token_type": "bearer"}), nil
	}}
	svc := NewAuthService(client, &stubStore{}, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "a@x.com", "p"); !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
}

func TestAuthService_Logout_ClearsWithoutNetwork(t *testing.T) {
	store := &stubStore{creds: domain.Credentials{AccessToken: "A", RefreshToken: "R"}}
	client := &stubClient{sendFn: func(context.Context, ports.RequestSpec) (*ports.Response, error) {
		t.Fatalf("logout must not call the API")
		return nil, nil
	}}
	svc := NewAuthService(client, store, zerolog.Nop())

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if !store.creds.Empty() {
		t.Fatalf("expected empty store, got %+v", store.creds)
	}
}

func TestAuthService_RefreshDelegatesToClient(t *testing.T) {
	client := &stubClient{refreshFn: func(context.Context) (string, error) { return "A2", nil }}
	svc := NewAuthService(client, &stubStore{}, zerolog.Nop())

	token, err := svc.Refresh(context.Background())
	if err != nil || token != "A2" {
		t.Fatalf("unexpected refresh result: %q, %v", token, err)
	}
}

func TestAuthService_AccessToken(t *testing.T) {
	svc := NewAuthService(&stubClient{}, &stubStore{creds: domain.Credentials{AccessToken: "A"}}, zerolog.Nop())

	token, err := svc.AccessToken(context.Background())
	if err != nil || token != "A" {
		t.Fatalf("unexpected token: %q, %v", token, err)
	}
}

func TestAuthService_Register(t *testing.T) {
	client := &stubClient{sendFn: func(_ context.Context, spec ports.RequestSpec) (*ports.Response, error) {
		if spec.Path != "/auth/register" || spec.Method != http.MethodPost {
			t.Fatalf("unexpected call %s %s", spec.Method, spec.Path)
		}
		in := spec.Body.(ports.RegisterInput)
		return jsonResponse(http.StatusCreated, domain.User{ID: 9, Email: in.Email, Role: domain.RoleUser}), nil
	}}
	svc := NewAuthService(client, &stubStore{}, zerolog.Nop())

	user, err := svc.Register(context.Background(), ports.RegisterInput{Email: "new@x.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID != 9 || user.Email != "new@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Register(context.Background(), ports.RegisterInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

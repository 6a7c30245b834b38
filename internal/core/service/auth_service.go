package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService implements ports.AuthService on top of the request client.
type AuthService struct {
	client ports.APIClient
	store  ports.CredentialStore
	log    zerolog.Logger
}

func NewAuthService(client ports.APIClient, store ports.CredentialStore, log zerolog.Logger) *AuthService {
	return &AuthService{client: client, store: store, log: log}
}

// Login exchanges credentials for a token pair, persists both tokens and
// returns the account they belong to. A 401 from the login endpoint is
// reported as domain.ErrInvalidCredentials and never triggers a refresh.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	resp, err := s.client.Send(ctx, ports.RequestSpec{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      loginRequest{Email: email, Password: password},
		NoRefresh: true,
	})
	if err != nil {
		if domain.StatusCode(err) == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
		}
		return nil, err
	}

	var pair domain.TokenPair
	if err := resp.Decode(&pair); err != nil {
		return nil, fmt.Errorf("%w: decode login response: %w", domain.ErrServer, err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response has no access_token", domain.ErrServer)
	}

	if err := s.store.Save(ctx, domain.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	s.log.Info().Str("email", email).Msg("logged in")

	return s.CurrentUser(ctx)
}

// Logout forgets both tokens. It makes no network call.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	s.log.Info().Msg("logged out")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	resp, err := s.client.Send(ctx, ports.RequestSpec{Method: http.MethodGet, Path: "/auth/me"})
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %w", domain.ErrServer, err)
	}
	return &user, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context) (string, error) {
	return s.client.Refresh(ctx)
}

// AccessToken returns the stored access token, or "" when logged out.
func (s *AuthService) AccessToken(ctx context.Context) (string, error) {
	creds, err := s.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	return creds.AccessToken, nil
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	resp, err := s.client.Send(ctx, ports.RequestSpec{
		Method:    http.MethodPost,
		Path:      "/auth/register",
		Body:      input,
		NoRefresh: true,
	})
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %w", domain.ErrServer, err)
	}
	return &user, nil
}

// IsAuthExpired reports whether err means the user must log in again.
func IsAuthExpired(err error) bool {
	return errors.Is(err, domain.ErrAuthExpired)
}

package ports

import (
	"context"

	"github.com/taskflow/client/internal/core/domain"
)

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=100"`
	FullName string      `json:"full_name,omitempty"`
	Role     domain.Role `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	Refresh(ctx context.Context) (string, error)
	AccessToken(ctx context.Context) (string, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
}

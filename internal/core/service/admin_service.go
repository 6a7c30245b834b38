package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

// AdminService wraps the admin-only endpoints. The server enforces the role;
// callers should still gate on Session.IsAdmin.
type AdminService struct {
	client ports.Requester
}

func NewAdminService(client ports.Requester) *AdminService {
	return &AdminService{client: client}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	resp, err := s.client.Send(ctx, ports.RequestSpec{Method: http.MethodGet, Path: "/users"})
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := resp.Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: decode users: %w", domain.ErrServer, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

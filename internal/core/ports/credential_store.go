package ports

import (
	"context"

	"github.com/taskflow/client/internal/core/domain"
)

// Persisted key names shared by every CredentialStore backend.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// CredentialStore persists the access/refresh token pair for one API origin.
// Implementations must be safe for concurrent use; last write wins.
type CredentialStore interface {
	Get(ctx context.Context) (domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	SetAccessToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

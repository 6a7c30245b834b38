package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

const keyPrefix = "taskflow:credentials"

// CredentialStore keeps the token pair in Redis under
// taskflow:credentials:<scope>:<access_token|refresh_token>.
type CredentialStore struct {
	client *redis.Client
	scope  string
}

// NewCredentialStore creates a CredentialStore wrapping the given Redis client.
func NewCredentialStore(client *redis.Client, scope string) *CredentialStore {
	return &CredentialStore{client: client, scope: scope}
}

func (s *CredentialStore) Get(ctx context.Context) (domain.Credentials, error) {
	vals, err := s.client.MGet(ctx, s.key(ports.AccessTokenKey), s.key(ports.RefreshTokenKey)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Credentials{}, fmt.Errorf("redis get credentials: %w", err)
	}
	var creds domain.Credentials
	if len(vals) == 2 {
		creds.AccessToken, _ = vals[0].(string)
		creds.RefreshToken, _ = vals[1].(string)
	}
	return creds, nil
}

func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.set(ctx, pipe, ports.AccessTokenKey, creds.AccessToken)
		s.set(ctx, pipe, ports.RefreshTokenKey, creds.RefreshToken)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) SetAccessToken(ctx context.Context, token string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.set(ctx, pipe, ports.AccessTokenKey, token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set access token: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(ports.AccessTokenKey), s.key(ports.RefreshTokenKey)).Err(); err != nil {
		return fmt.Errorf("redis clear credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) set(ctx context.Context, pipe redis.Pipeliner, name, value string) {
	if value == "" {
		pipe.Del(ctx, s.key(name))
		return
	}
	pipe.Set(ctx, s.key(name), value, 0)
}

func (s *CredentialStore) key(name string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.scope, name)
}

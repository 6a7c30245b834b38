package credstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/taskflow/client/internal/core/ports"
	"github.com/taskflow/client/internal/infrastructure/credstore/bolt"
	mongostore "github.com/taskflow/client/internal/infrastructure/db/mongo"
	redisstore "github.com/taskflow/client/internal/infrastructure/db/redis"
	"github.com/taskflow/client/internal/pkg/config"
)

// Backend names accepted in CREDENTIAL_STORE.
const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Scope returns the origin (scheme://host[:port]) of baseURL. Credentials are
// partitioned by origin so that two API deployments never share tokens.
func Scope(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("credstore: parse %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("credstore: %q is not an absolute url", baseURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// Open builds the configured backend. The returned func releases it.
func Open(ctx context.Context, cfg *config.Config) (ports.CredentialStore, func(context.Context) error, error) {
	scope, err := Scope(cfg.API.BaseURL)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(cfg.Store.Backend) {
	case BackendBolt, "":
		s, err := bolt.Open(cfg.Store.Path, scope)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return s.Close() }, nil

	case BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewCredentialStore(client, scope), func(context.Context) error { return client.Close() }, nil

	case BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		return mongostore.NewCredentialStore(db, scope), client.Disconnect, nil

	case BackendMemory:
		return NewMemory(), func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("credstore: unknown backend %q", cfg.Store.Backend)
}

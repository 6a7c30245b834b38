package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" || cfg.API.Prefix != "/api/v1" {
		t.Fatalf("unexpected api defaults: %+v", cfg.API)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.API.Timeout)
	}
	if cfg.Store.Backend != "bolt" {
		t.Fatalf("unexpected backend: %s", cfg.Store.Backend)
	}
	if !strings.HasSuffix(cfg.Store.Path, "credentials.db") {
		t.Fatalf("unexpected credential path: %s", cfg.Store.Path)
	}
	if cfg.Sandbox.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected sandbox access ttl: %v", cfg.Sandbox.AccessTTL)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"TASKFLOW_API_URL":        "https://tasks.example.com",
		"TASKFLOW_SHARED_REFRESH": "true",
		"CREDENTIAL_STORE":        "redis",
		"CREDENTIAL_PATH":         "/tmp/creds.db",
		"REDIS_DB":                "3",
		"LOG_LEVEL":               "debug",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://tasks.example.com" || !cfg.API.SharedRefresh {
		t.Fatalf("api overrides not applied: %+v", cfg.API)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Path != "/tmp/creds.db" {
		t.Fatalf("store overrides not applied: %+v", cfg.Store)
	}
	if cfg.Redis.DB != 3 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected values: redis db %d, level %s", cfg.Redis.DB, cfg.LogLevel)
	}
}

func TestLoadWith_InvalidDuration(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"TASKFLOW_HTTP_TIMEOUT": "soon",
	}))
	if err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	LogPretty   bool   `env:"LOG_PRETTY,   default=true"`
	MetricsAddr string `env:"METRICS_ADDR"`

	API       APIConfig
	Store     StoreConfig
	Redis     RedisConfig
	Mongo     MongoConfig
	Telemetry TelemetryConfig
	Sandbox   SandboxConfig
}

type APIConfig struct {
	BaseURL       string        `env:"TASKFLOW_API_URL,        default=http://localhost:8000"`
	Prefix        string        `env:"TASKFLOW_API_PREFIX,     default=/api/v1"`
	Timeout       time.Duration `env:"TASKFLOW_HTTP_TIMEOUT,   default=30s"`
	SharedRefresh bool          `env:"TASKFLOW_SHARED_REFRESH, default=false"`
}

// StoreConfig selects the credential store backend: bolt, redis, mongo or memory.
type StoreConfig struct {
	Backend string `env:"CREDENTIAL_STORE, default=bolt"`
	Path    string `env:"CREDENTIAL_PATH"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskflow"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool   `env:"OTEL_EXPORTER_OTLP_INSECURE, default=false"`
	ServiceName  string `env:"OTEL_SERVICE_NAME,           default=taskflow-client"`
}

// SandboxConfig configures the in-memory stand-in API.
type SandboxConfig struct {
	Port       string        `env:"SANDBOX_PORT,        default=8000"`
	JWTSecret  string        `env:"SANDBOX_JWT_SECRET,  default=sandbox-secret"`
	AccessTTL  time.Duration `env:"SANDBOX_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"SANDBOX_REFRESH_TTL, default=168h"`
}

// Load reads configuration from environment variables using go-envconfig,
// after loading a .env file from the working directory when one exists.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultCredentialPath()
	}
	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func defaultCredentialPath() string {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ".taskflow", "credentials.db")
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAdminPassword is the bootstrap password used when ADMIN_PASSWORD
// is unset.
const DefaultAdminPassword = "admin123"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH" envDefault:"./db/association.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	TokenBackend       string        `env:"TOKEN_BACKEND" envDefault:"sql"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	TokenSweepInterval time.Duration `env:"TOKEN_SWEEP_INTERVAL" envDefault:"1h"`
	RedisAddr          string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`

	UploadBackend  string `env:"UPLOAD_BACKEND" envDefault:"local"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./assets/uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"minio:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"association-uploads"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8000,http://localhost:3000,http://127.0.0.1:8000,http://127.0.0.1:3000"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment and validates enumerated settings.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and settings that cannot work together.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.TokenBackend {
	case "sql", "redis":
	default:
		return fmt.Errorf("unknown TOKEN_BACKEND %q", c.TokenBackend)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.TokenSweepInterval < 0 {
		return fmt.Errorf("TOKEN_SWEEP_INTERVAL must not be negative")
	}

	switch c.UploadBackend {
	case "local", "minio":
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.UploadBackend)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.PostgresDSN
	}
	return c.DBPath
}

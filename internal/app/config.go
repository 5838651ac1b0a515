package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/femar/gestao/internal/rbac"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	AlertEmail        string  `envconfig:"ALERT_EMAIL" default:"seguranca@femar.org.br"`
	AlertQueueEnabled bool    `envconfig:"ALERT_QUEUE_ENABLED" default:"false"`
	AnomalyThreshold  float64 `envconfig:"ANOMALY_THRESHOLD" default:"20000"`

	AuthorizerRoles     []string `envconfig:"AUTHORIZER_ROLES" default:"network-admin,superintendent,manager"`
	RolePermissionsFile string   `envconfig:"ROLE_PERMISSIONS_FILE"`

	DemoPassword       string `envconfig:"DEMO_PASSWORD" default:"password123"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	WorkerConcurrency  int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DemoPassword == "" {
		return nil, errors.New("demo password must be provided")
	}
	if cfg.AnomalyThreshold <= 0 {
		return nil, fmt.Errorf("anomaly threshold must be positive, got %v", cfg.AnomalyThreshold)
	}
	if _, err := cfg.Authorizers(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Authorizers parses AUTHORIZER_ROLES.
func (c *Config) Authorizers() ([]rbac.Role, error) {
	roles := make([]rbac.Role, 0, len(c.AuthorizerRoles))
	for _, raw := range c.AuthorizerRoles {
		role, err := rbac.ParseRole(raw)
		if err != nil {
			return nil, fmt.Errorf("AUTHORIZER_ROLES: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

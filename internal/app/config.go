package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	VendasAPIURL     string        `envconfig:"VENDAS_API_URL" required:"true"`
	VendasAPITimeout time.Duration `envconfig:"VENDAS_API_TIMEOUT" default:"30s"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"5m"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"12h"`

	WarmupWindowDays int `envconfig:"WARMUP_WINDOW_DAYS" default:"30"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.VendasAPIURL = strings.TrimRight(strings.TrimSpace(cfg.VendasAPIURL), "/")
	if cfg.VendasAPIURL == "" {
		return nil, errors.New("vendas api url must be provided")
	}
	if !strings.HasPrefix(cfg.VendasAPIURL, "http://") && !strings.HasPrefix(cfg.VendasAPIURL, "https://") {
		return nil, errors.New("vendas api url must be an http or https url")
	}
	if cfg.WarmupWindowDays <= 0 {
		return nil, errors.New("warmup window must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Log     LogConfig
	Profile ProfileConfig
	Tracing TracingConfig
}

type APIConfig struct {
	BaseURL   string        `env:"GAMELOG_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout   time.Duration `env:"GAMELOG_API_TIMEOUT" envDefault:"10s"`
	UserAgent string        `env:"GAMELOG_API_USER_AGENT" envDefault:"gamelog-client"`
}

type SessionConfig struct {
	Backend string        `env:"GAMELOG_SESSION_BACKEND" envDefault:"memory"` // "memory", "redis"
	Key     string        `env:"GAMELOG_SESSION_KEY" envDefault:"default"`
	TTL     time.Duration `env:"GAMELOG_SESSION_TTL" envDefault:"720h"`

	// Token and UserID seed the memory backend for one-shot commands.
	Token  string `env:"GAMELOG_SESSION_TOKEN"`
	UserID int64  `env:"GAMELOG_SESSION_USER_ID"`
}

type RedisConfig struct {
	Host     string `env:"GAMELOG_REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"GAMELOG_REDIS_PORT" envDefault:"6379"`
	Password string `env:"GAMELOG_REDIS_PASSWORD"`
	DB       int    `env:"GAMELOG_REDIS_DB" envDefault:"0"`
}

type LogConfig struct {
	Level string `env:"GAMELOG_LOG_LEVEL" envDefault:"info"`
	Debug bool   `env:"GAMELOG_DEBUG" envDefault:"false"`
}

type ProfileConfig struct {
	// FetchConcurrency bounds parallel game-detail lookups per profile load.
	FetchConcurrency int `env:"GAMELOG_PROFILE_FETCH_CONCURRENCY" envDefault:"8"`
}

type TracingConfig struct {
	Enabled     bool   `env:"GAMELOG_OTEL_ENABLED" envDefault:"false"`
	Endpoint    string `env:"GAMELOG_OTEL_ENDPOINT"`
	ServiceName string `env:"GAMELOG_OTEL_SERVICE_NAME" envDefault:"gamelog"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url %q", c.API.BaseURL)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if strings.TrimSpace(c.Session.Key) == "" {
		return errors.New("session key is required")
	}
	if c.Profile.FetchConcurrency < 1 {
		c.Profile.FetchConcurrency = 1
	}
	return nil
}

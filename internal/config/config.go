package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// sentry
	SentryEnabled bool `toml:"sentry_enabled"`
	// content sections storage
	ContentRootPath string `toml:"content_root_path"`
	// users collection (credential store)
	UsersFilePath string `toml:"users_file_path"`
	// login rate limiting
	LoginRateLimitMaxAttempts int `toml:"login_rate_limit_max_attempts"`
	LoginRateLimitWindowMins  int `toml:"login_rate_limit_window_mins"`
	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

// CookieSecure tells whether session cookies get the Secure attribute.
// Enabled only in production-like environments.
func (c *Config) CookieSecure() bool {
	return c.Environment == "production"
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		t.Development.Environment = "development"
		return t.Development, nil
	case "prod", "production":
		t.Production.Environment = "production"
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(path, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}

	if cfg.LoginRateLimitMaxAttempts <= 0 {
		cfg.LoginRateLimitMaxAttempts = 10
	}
	if cfg.LoginRateLimitWindowMins <= 0 {
		cfg.LoginRateLimitWindowMins = 15
	}

	return cfg, nil
}

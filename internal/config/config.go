package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration for the terminal backend.
type Config struct {
	Env     string        `yaml:"env"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
	Feed    FeedConfig    `yaml:"feed"`
	// Prices is the static oracle table: symbol -> reference price.
	Prices map[string]float64 `yaml:"prices"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

type APIConfig struct {
	// StrictStatusErrors makes the API report a 409 for updates to
	// existing-but-immutable orders instead of the historical 404.
	StrictStatusErrors bool `yaml:"strict_status_errors"`
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// means the local frontend dev servers.
	CORSOrigins []string `yaml:"cors_origins"`
}

type FeedConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Env: "development",
		Server: ServerConfig{
			Port:        8000,
			MetricsPort: 9090,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Feed: FeedConfig{
			Interval: 2 * time.Second,
		},
	}
}

// Load reads YAML config from path on top of the defaults and applies
// basic validation.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort <= 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("server.metrics_port out of range: %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.MetricsPort == cfg.Server.Port {
		return fmt.Errorf("server.metrics_port must differ from server.port")
	}
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level: %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown logging.format: %q", cfg.Logging.Format)
	}
	if cfg.Feed.Interval < 0 {
		return fmt.Errorf("feed.interval must not be negative")
	}
	for symbol, price := range cfg.Prices {
		if price <= 0 {
			return fmt.Errorf("prices[%s] must be positive, got %v", symbol, price)
		}
	}
	return nil
}

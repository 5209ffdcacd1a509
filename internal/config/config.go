// Package config loads server settings from the environment. A .env file in
// the working directory is merged in first when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces all environment variables, e.g. CHATWIRE_PORT.
const Prefix = "chatwire"

// Config carries every tunable of the server. Defaults are suitable for
// local development.
type Config struct {
	Host             string        `envconfig:"HOST" default:"0.0.0.0"`
	Port             int           `envconfig:"PORT" default:"8080"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"30s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`

	PingInterval   time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
	WSReadTimeout  time.Duration `envconfig:"WS_READ_TIMEOUT" default:"60s"`
	WSWriteTimeout time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	SendQueueSize  int           `envconfig:"SEND_QUEUE_SIZE" default:"100"`

	HubQueueSize    int    `envconfig:"HUB_QUEUE_SIZE" default:"1024"`
	HistoryPageSize int    `envconfig:"HISTORY_PAGE_SIZE" default:"10"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.HTTPReadTimeout <= 0 || c.HTTPWriteTimeout <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}
	if c.PingInterval <= 0 {
		return fmt.Errorf("ping interval must be positive")
	}
	if c.WSReadTimeout <= c.PingInterval {
		return fmt.Errorf("websocket read timeout must exceed the ping interval")
	}
	if c.WSWriteTimeout <= 0 {
		return fmt.Errorf("websocket write timeout must be positive")
	}
	if c.SendQueueSize < 1 {
		return fmt.Errorf("send queue size must be at least 1")
	}
	if c.HubQueueSize < 1 {
		return fmt.Errorf("hub queue size must be at least 1")
	}
	if c.HistoryPageSize < 1 {
		return fmt.Errorf("history page size must be at least 1")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

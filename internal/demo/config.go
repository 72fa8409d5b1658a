package demo

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is read from the environment.
type Config struct {
	Backend    string `env:"FMODEL_BACKEND" envDefault:"memory"`
	SQLitePath string `env:"FMODEL_SQLITE_PATH" envDefault:"fmodel-demo.db"`

	// NATSURL moves the order views to a NATS KV bucket when set.
	NATSURL    string `env:"FMODEL_NATS_URL"`
	NATSBucket string `env:"FMODEL_NATS_BUCKET" envDefault:"order_views"`

	Retries uint64 `env:"FMODEL_RETRIES" envDefault:"3"`

	LogLevel  string `env:"FMODEL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FMODEL_LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

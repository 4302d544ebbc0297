package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Caja"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Storage struct {
		// Path of the SQLite file backing the key-value store. Empty
		// selects the in-memory backend (data lost on exit).
		Path        string        `envconfig:"STORAGE_PATH" default:"data/caja.db"`
		CacheMaxAge time.Duration `envconfig:"CACHE_MAX_AGE" default:"5s"`
	}

	HTTP struct {
		AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

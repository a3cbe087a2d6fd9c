package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL,      default=http://localhost:5000/api"`
	SuperAdminEmail string        `env:"SUPER_ADMIN_EMAIL, default=tewodrosayalew111@gmail.com"`
	PageSize        int           `env:"PAGE_SIZE,         default=4"`
	SessionDBPath   string        `env:"SESSION_DB_PATH,   default=session.db"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT,      default=15s"`
	LogLevel        string        `env:"LOG_LEVEL,         default=info"`
	LogPretty       bool          `env:"LOG_PRETTY,        default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

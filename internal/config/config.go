package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath      string     `env:"DB_PATH" envDefault:"data/futsal.db"`
	RedisURL    string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir      string     `env:"SPA_DIR" envDefault:"web/dist"`
	UploadDir   string     `env:"UPLOAD_DIR" envDefault:"data/uploads"`
	CORSOrigins []string   `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	AnalyticsCacheTTL time.Duration `env:"ANALYTICS_CACHE_TTL" envDefault:"1m"`
	MaxUploadMB       int64         `env:"MAX_UPLOAD_MB" envDefault:"5"`
	NearbyLimit       int           `env:"NEARBY_DEFAULT_LIMIT" envDefault:"0"`

	Admin    AdminConfig `envPrefix:"ADMIN_"`
	SeedDemo bool        `env:"SEED_DEMO" envDefault:"true"`
}

// AdminConfig is the bootstrap administrator created on first start.
type AdminConfig struct {
	Username string `env:"USERNAME" envDefault:"admin"`
	Email    string `env:"EMAIL" envDefault:"admin@futsal.local"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return &cfg, nil
}

// MaxUploadBytes is the per-file upload limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

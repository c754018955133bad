/*
Package config loads server settings from the environment.

SOURCES (later wins):
  1. envDefault tags on Config
  2. .env and .env.local in the working directory, if present
  3. The process environment
  4. Command-line flags applied by cmd/server

VARIABLES:
  PORT             HTTP port (8080)
  STORE            sqlite | memory (sqlite)
  DB_PATH          SQLite path, ":memory:" allowed (paystructure.db)
  LOG_LEVEL        debug | info | warn | error (info)
  LOG_FORMAT       json | console (console)
  BASE_WAGE        Default base wage for new sessions (5729876)
  COMPANY_NAME     Default company name for new sessions
  ALLOWED_ORIGINS  Comma separated CORS origins
  METRICS_ENABLED  Expose Prometheus metrics (true)
  METRICS_PATH     Metrics endpoint (/metrics)
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store kinds.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// DefaultEnvFiles are loaded by Load when they exist.
var DefaultEnvFiles = []string{".env", ".env.local"}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	Store  string `env:"STORE" envDefault:"sqlite"`
	DBPath string `env:"DB_PATH" envDefault:"paystructure.db"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	BaseWage    int64  `env:"BASE_WAGE" envDefault:"5729876"`
	CompanyName string `env:"COMPANY_NAME"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`

	Metrics MetricsOptions
}

// LoadEnv loads the env files that exist and returns how many were read.
// Variables already set in the process are not overridden.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads env files and the process environment into a validated Config.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}
	return Parse(env.Options{})
}

// Parse reads a Config using opts. Tests pass opts.Environment to avoid
// touching the process environment.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: PORT must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}
	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("%w: DB_PATH is required for the sqlite store", ErrInvalidConfig)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: STORE must be %q or %q, got %q", ErrInvalidConfig, StoreSQLite, StoreMemory, c.Store)
	}
	if c.BaseWage <= 0 {
		return fmt.Errorf("%w: BASE_WAGE must be positive, got %d", ErrInvalidConfig, c.BaseWage)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%w: METRICS_PATH must start with /, got %q", ErrInvalidConfig, c.Metrics.Path)
	}
	return nil
}

// Package config provides configuration loading for the storelens service.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Query     QueryConfig     `yaml:"query"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_sec"`
}

// StoreConfig holds MongoDB connection settings.
type StoreConfig struct {
	URI                 string `yaml:"uri"`
	Database            string `yaml:"database"`
	ConnectTimeoutSec   int    `yaml:"connect_timeout_sec"`
	MaxPoolSize         uint64 `yaml:"max_pool_size"`
	ReadinessTimeoutSec int    `yaml:"readiness_timeout_sec"`
}

// QueryConfig bounds what a single query may request.
type QueryConfig struct {
	MaxRows           int64 `yaml:"max_rows"`
	DefaultLimit      int64 `yaml:"default_limit"`
	MaxTimeoutSec     int64 `yaml:"max_timeout_sec"`
	DefaultTimeoutSec int64 `yaml:"default_timeout_sec"`
}

// AuthConfig holds API authentication settings. An empty token list
// disables authentication.
type AuthConfig struct {
	Tokens []string `yaml:"tokens"`
}

// RateLimitConfig holds per-client request throttling settings.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration for the given environment (local, dev, prod).
// STORELENS_CONFIG overrides the search path with an explicit file. A
// missing config file is not an error: the service runs on defaults.
func Load(env string) (Config, error) {
	var cfg Config

	if path := os.Getenv("STORELENS_CONFIG"); path != "" {
		loaded, err := readConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	} else {
		loaded, err := readConfig(findConfigPath(env))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		if err == nil {
			cfg = loaded
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad is like Load but panics on error. Use during startup.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// GetEnv returns the current environment from STORELENS_ENV, defaulting
// to "local".
func GetEnv() string {
	if env := os.Getenv("STORELENS_ENV"); env != "" {
		return env
	}
	return "local"
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// findConfigPath locates the config file for an environment. It checks
// the working directory first, then the project root relative to this
// source file.
func findConfigPath(env string) string {
	relPath := filepath.Join("config", env+".yaml")
	if _, err := os.Stat(relPath); err == nil {
		return relPath
	}

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return relPath
	}

	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	return filepath.Join(projectRoot, "config", env+".yaml")
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} references in the
// raw config with values from the environment.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])

		name, def, hasDefault := strings.Cut(expr, ":-")
		if value := os.Getenv(name); value != "" {
			return []byte(value)
		}
		if hasDefault {
			return []byte(def)
		}
		return []byte("")
	})
}

// ApplyDefaults fills in defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec == 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec == 0 {
		// Must outlast the longest query timeout plus encoding.
		c.HTTP.WriteTimeoutSec = 35
	}
	if c.HTTP.ShutdownSec == 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Store.URI == "" {
		c.Store.URI = "mongodb://localhost:27017"
	}
	if c.Store.Database == "" {
		c.Store.Database = "pagegrid"
	}
	if c.Store.ConnectTimeoutSec == 0 {
		c.Store.ConnectTimeoutSec = 10
	}
	if c.Store.ReadinessTimeoutSec == 0 {
		c.Store.ReadinessTimeoutSec = 30
	}

	if c.Query.MaxRows == 0 {
		c.Query.MaxRows = 1000
	}
	if c.Query.DefaultLimit == 0 {
		c.Query.DefaultLimit = 100
	}
	if c.Query.MaxTimeoutSec == 0 {
		c.Query.MaxTimeoutSec = 30
	}
	if c.Query.DefaultTimeoutSec == 0 {
		c.Query.DefaultTimeoutSec = 10
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	if c.Store.URI == "" {
		return fmt.Errorf("store.uri is required")
	}
	if c.Store.Database == "" {
		return fmt.Errorf("store.database is required")
	}

	if c.Query.MaxRows < 1 {
		return fmt.Errorf("query.max_rows must be positive, got %d", c.Query.MaxRows)
	}
	if c.Query.DefaultLimit < 1 {
		return fmt.Errorf("query.default_limit must be positive, got %d", c.Query.DefaultLimit)
	}
	if c.Query.DefaultLimit > c.Query.MaxRows {
		return fmt.Errorf("query.default_limit %d exceeds query.max_rows %d", c.Query.DefaultLimit, c.Query.MaxRows)
	}
	if c.Query.MaxTimeoutSec < 1 {
		return fmt.Errorf("query.max_timeout_sec must be positive, got %d", c.Query.MaxTimeoutSec)
	}
	if c.Query.DefaultTimeoutSec < 1 {
		return fmt.Errorf("query.default_timeout_sec must be positive, got %d", c.Query.DefaultTimeoutSec)
	}
	if c.Query.DefaultTimeoutSec > c.Query.MaxTimeoutSec {
		return fmt.Errorf("query.default_timeout_sec %d exceeds query.max_timeout_sec %d", c.Query.DefaultTimeoutSec, c.Query.MaxTimeoutSec)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("rate_limit.rps must be positive, got %v", c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit.burst must be positive, got %d", c.RateLimit.Burst)
		}
	}

	return nil
}

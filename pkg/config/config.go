// Package config handles YAML configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"go.yaml.in/yaml/v3"
)

// Supported cache backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level configuration of the caching server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Backend       string        `yaml:"backend"` // "redis" or "memory"
	Path          string        `yaml:"path"`    // inclusion pattern, "~" prefix for a regexp
	Exclude       []string      `yaml:"exclude"`
	Methods       []string      `yaml:"methods"` // empty allows every method
	Prefix        string        `yaml:"prefix"`
	Expire        int           `yaml:"expire"` // seconds
	Clean         bool          `yaml:"clean"`
	StoreTimeout  time.Duration `yaml:"store_timeout"`
	MaxBodySize   int64         `yaml:"max_body_size"` // bytes, 0 = unlimited
	SingleFlight  *bool         `yaml:"single_flight"` // defaults to true when unset
	MemoryMaxSize int           `yaml:"memory_max_size"`
}

// TTL returns Expire as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.Expire) * time.Second
}

// SingleFlightEnabled reports whether concurrent misses should be collapsed.
func (c CacheConfig) SingleFlightEnabled() bool {
	return c.SingleFlight == nil || *c.SingleFlight
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Cache: CacheConfig{
			Backend:       BackendRedis,
			Prefix:        "web-cache",
			Expire:        86400,
			StoreTimeout:  2 * time.Second,
			MemoryMaxSize: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
// Unset variables are left untouched.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at start-up.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}

	switch c.Cache.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis.addr is required for the redis backend", ErrInvalid)
		}
	case BackendMemory:
		if c.Cache.MemoryMaxSize <= 0 {
			return fmt.Errorf("%w: cache.memory_max_size must be positive", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown cache.backend %q", ErrInvalid, c.Cache.Backend)
	}

	if c.Cache.Prefix == "" {
		return fmt.Errorf("%w: cache.prefix is required", ErrInvalid)
	}
	if c.Cache.Expire < 1 {
		return fmt.Errorf("%w: cache.expire must be at least 1 second", ErrInvalid)
	}
	if c.Cache.StoreTimeout < 0 {
		return fmt.Errorf("%w: cache.store_timeout must not be negative", ErrInvalid)
	}
	if c.Cache.MaxBodySize < 0 {
		return fmt.Errorf("%w: cache.max_body_size must not be negative", ErrInvalid)
	}
	return nil
}

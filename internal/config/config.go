// Package config loads server settings: defaults, then an optional YAML
// file, then SHAREARECIPE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       string        `yaml:"port"`
	DBPath     string        `yaml:"db_path"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
	RedisURL   string        `yaml:"redis_url"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

func Default() *Config {
	return &Config{
		Port:       "8080",
		DBPath:     "sharearecipe.db",
		LogLevel:   "info",
		LogFormat:  "text",
		SessionTTL: 30 * 24 * time.Hour,
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides. A missing file is an error only when path was given.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SHAREARECIPE_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("SHAREARECIPE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SHAREARECIPE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SHAREARECIPE_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("SHAREARECIPE_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("SHAREARECIPE_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHAREARECIPE_SESSION_TTL: %w", err)
		}
		c.SessionTTL = ttl
	}
	return nil
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

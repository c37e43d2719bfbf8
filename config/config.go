// ABOUTME: Configuration loading for leadgen from YAML, .env files and the environment
// ABOUTME: Resolves XDG default paths and applies LEADGEN_* overrides last
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the CLI, TUI and MCP server.
type Config struct {
	DBPath           string        `yaml:"db_path"`
	PageSize         int           `yaml:"page_size"`
	ClientFetchLimit int           `yaml:"client_fetch_limit"`
	SnapshotTTL      time.Duration `yaml:"snapshot_ttl"`
	Timezone         string        `yaml:"timezone"`
	BulkConcurrency  int           `yaml:"bulk_concurrency"`
	LogLevel         string        `yaml:"log_level"`
	DefaultProject   string        `yaml:"default_project"`
}

// Dir returns the XDG config directory for leadgen.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "leadgen")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultDBPath returns the XDG data path of the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "leadgen", "leadgen.db")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:           DefaultDBPath(),
		PageSize:         50,
		ClientFetchLimit: 10000,
		Timezone:         "Local",
		BulkConcurrency:  4,
		LogLevel:         "warn",
	}
}

// Load reads configuration from path (Path() when empty). A missing file is
// not an error. A .env file in the working directory is loaded into the
// environment first, then LEADGEN_* variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnvOverrides applies LEADGEN_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LEADGEN_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LEADGEN_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("LEADGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LEADGEN_PROJECT"); v != "" {
		cfg.DefaultProject = v
	}
	for name, dst := range map[string]*int{
		"LEADGEN_PAGE_SIZE":          &cfg.PageSize,
		"LEADGEN_CLIENT_FETCH_LIMIT": &cfg.ClientFetchLimit,
		"LEADGEN_BULK_CONCURRENCY":   &cfg.BulkConcurrency,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = n
	}
	if v := os.Getenv("LEADGEN_SNAPSHOT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEADGEN_SNAPSHOT_TTL: %w", err)
		}
		cfg.SnapshotTTL = ttl
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.ClientFetchLimit < c.PageSize {
		return fmt.Errorf("client_fetch_limit (%d) must be at least page_size (%d)", c.ClientFetchLimit, c.PageSize)
	}
	if c.BulkConcurrency <= 0 {
		return fmt.Errorf("bulk_concurrency must be positive, got %d", c.BulkConcurrency)
	}
	if c.SnapshotTTL < 0 {
		return fmt.Errorf("snapshot_ttl must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" and "" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Package config loads starpath settings from a YAML file with
// STARPATH_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/llm"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	User     string         `yaml:"user"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	LLM      LLMConfig      `yaml:"llm"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// DatabaseConfig selects the progress and to-do store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	Path   string `yaml:"path"`   // sqlite file; empty resolves to the XDG data dir
	DSN    string `yaml:"dsn"`    // postgres connection string
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty logs to stderr
}

// LLMConfig controls the classifier's LLM fallback. API keys are read
// from the environment only.
type LLMConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CatalogConfig controls the node catalog.
type CatalogConfig struct {
	Path            string `yaml:"path"`             // YAML file replacing the embedded catalog
	DefaultCategory string `yaml:"default_category"` // fallback for unclassified to-dos
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() Config {
	return Config{
		User: "local",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Log: LogConfig{
			Level: "warn",
		},
		LLM: LLMConfig{
			Timeout: 5 * time.Second,
		},
		Catalog: CatalogConfig{
			DefaultCategory: string(catalog.CategorySkill),
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/starpath/config.yaml, falling
// back to ~/.config.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "starpath", "config.yaml")
}

// Load reads configuration from path and applies environment overrides.
// A missing or empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.User, "STARPATH_USER")
	set(&c.Database.Driver, "STARPATH_DB_DRIVER")
	set(&c.Database.Path, "STARPATH_DB")
	set(&c.Database.DSN, "STARPATH_DB_DSN")
	set(&c.Log.Level, "STARPATH_LOG_LEVEL")
	set(&c.Log.File, "STARPATH_LOG_FILE")
	set(&c.Catalog.Path, "STARPATH_CATALOG")
	set(&c.Catalog.DefaultCategory, "STARPATH_DEFAULT_CATEGORY")

	// Naming a provider in the environment turns the fallback on.
	if p := os.Getenv("STARPATH_LLM_PROVIDER"); p != "" {
		c.LLM.Provider = p
		c.LLM.Enabled = true
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}
	if c.Catalog.DefaultCategory == "" {
		c.Catalog.DefaultCategory = d.Catalog.DefaultCategory
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}

	if !catalog.Category(c.Catalog.DefaultCategory).Valid() {
		return fmt.Errorf("catalog.default_category %q is not a star-map category", c.Catalog.DefaultCategory)
	}
	return nil
}

// DefaultCategory returns the configured fallback category.
func (c *Config) DefaultCategory() catalog.Category {
	return catalog.Category(c.Catalog.DefaultCategory)
}

// ProviderConfig returns the LLM provider settings: keys and models from
// the environment, provider and timeout from this config when set.
func (c *Config) ProviderConfig() llm.Config {
	cfg := llm.ConfigFromEnv()
	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	return cfg
}

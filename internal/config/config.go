// Package config provides configuration loading and management for TagKitt.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete TagKitt configuration
type Config struct {
	// LogLevel is one of debug, info, warn, error
	LogLevel string         `yaml:"log_level"`
	Schemas  []SchemaConfig `yaml:"schemas,omitempty"`
	// Active is the id of the schema the editor starts with
	Active string       `yaml:"active,omitempty"`
	Store  StoreConfig  `yaml:"store"`
	Watch  WatchConfig  `yaml:"watch"`
	Search SearchConfig `yaml:"search"`
}

// SchemaConfig registers one schema grammar
type SchemaConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Grammar is the path of the RelaxNG JSON file
	Grammar string `yaml:"grammar"`
	// Roots restricts the elements offered at document level
	Roots []string `yaml:"roots,omitempty"`
	CSS   string   `yaml:"css,omitempty"`
}

// StoreConfig configures the schema registry
type StoreConfig struct {
	// DSN is the SQLite data source (empty = in-memory store)
	DSN string `yaml:"dsn"`
}

// WatchConfig configures grammar file watching
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// SearchConfig configures tag search
type SearchConfig struct {
	// Language selects the stopword list (ISO 639-1)
	Language string `yaml:"language"`
	// Limit caps search results (0 = unlimited)
	Limit int `yaml:"limit"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 300 * time.Millisecond,
		},
		Search: SearchConfig{
			Language: "en",
			Limit:    20,
		},
	}
}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	seen := make(map[string]bool, len(c.Schemas))
	for i, s := range c.Schemas {
		if s.ID == "" {
			return fmt.Errorf("schemas[%d].id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("schemas[%d].id %q is duplicated", i, s.ID)
		}
		seen[s.ID] = true
		if s.Grammar == "" {
			return fmt.Errorf("schemas[%d].grammar is required", i)
		}
	}
	if c.Active != "" && len(c.Schemas) > 0 && !seen[c.Active] {
		return fmt.Errorf("active schema %q is not configured", c.Active)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search.limit must not be negative")
	}
	return nil
}

// Schema returns the configured schema with id, or nil.
func (c *Config) Schema(id string) *SchemaConfig {
	for i := range c.Schemas {
		if c.Schemas[i].ID == id {
			return &c.Schemas[i]
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Relative grammar paths are resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := readFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// readFile decodes path into config without applying defaults, so a layer
// only carries the values it sets.
func readFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	base := filepath.Dir(path)
	for i := range config.Schemas {
		g := config.Schemas[i].Grammar
		if g != "" && !filepath.IsAbs(g) {
			config.Schemas[i].Grammar = filepath.Join(base, g)
		}
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). Schemas merge by id; new ids are appended.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}

	for _, s := range other.Schemas {
		if existing := c.Schema(s.ID); existing != nil {
			*existing = s
			continue
		}
		c.Schemas = append(c.Schemas, s)
	}
	if other.Active != "" {
		c.Active = other.Active
	}

	if other.Store.DSN != "" {
		c.Store.DSN = other.Store.DSN
	}

	// Watch
	if other.Watch.Enabled {
		c.Watch.Enabled = true
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Search
	if other.Search.Language != "" {
		c.Search.Language = other.Search.Language
	}
	if other.Search.Limit != 0 {
		c.Search.Limit = other.Search.Limit
	}
}

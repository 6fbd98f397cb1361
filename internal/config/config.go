// Package config resolves amplifier's process-wide home directory and
// loads/saves the small YAML configuration file that lives under it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"amplifier/internal/logging"

	"gopkg.in/yaml.v3"
)

// LoggingConfig controls the category logger (internal/logging).
type LoggingConfig struct {
	Enabled    bool            `yaml:"enabled"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// GitConfig controls the git source handler's clone behavior.
type GitConfig struct {
	Depth       int    `yaml:"depth"`
	CloneTimeout string `yaml:"clone_timeout"`
}

// Config holds amplifier's process-wide configuration.
type Config struct {
	// Home is the resolved AMPLIFIER_HOME directory. It is not
	// serialized; it is always computed at load time (see ResolveHome).
	Home string `yaml:"-"`

	Logging LoggingConfig `yaml:"logging"`
	Git     GitConfig     `yaml:"git"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
		Git: GitConfig{
			Depth:        1,
			CloneTimeout: "60s",
		},
	}
}

// ResolveHome resolves AMPLIFIER_HOME per the documented order:
// explicit argument, then the AMPLIFIER_HOME environment variable, then
// ~/.amplifier.
func ResolveHome(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv("AMPLIFIER_HOME"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".amplifier"), nil
}

// CacheDir returns the on-disk source cache directory under home.
func (c *Config) CacheDir() string {
	return filepath.Join(c.Home, "cache")
}

// RegistryPath returns the persisted registry JSON file path under home.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Home, "registry.json")
}

// configFilePath is where Load/Save read and write the YAML file, <home>/config.yaml.
func configFilePath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Load resolves home (explicitHome may be empty) and loads configuration
// from <home>/config.yaml. A missing file is not an error; defaults are
// returned with Home populated.
func Load(explicitHome string) (*Config, error) {
	home, err := ResolveHome(explicitHome)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Home = home

	path := configFilePath(home)
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Home = home

	logging.Boot("config loaded: home=%s logging.enabled=%v", cfg.Home, cfg.Logging.Enabled)
	return cfg, nil
}

// Save writes the configuration to <c.Home>/config.yaml, creating the
// directory if needed.
func (c *Config) Save() error {
	if c.Home == "" {
		return fmt.Errorf("config has no home directory set")
	}
	if err := os.MkdirAll(c.Home, 0755); err != nil {
		return fmt.Errorf("create home directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configFilePath(c.Home), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home directory not resolved")
	}
	if c.Git.Depth < 0 {
		return fmt.Errorf("git.depth must be >= 0, got %d", c.Git.Depth)
	}
	if _, err := c.GitCloneTimeout(); err != nil {
		return fmt.Errorf("git.clone_timeout: %w", err)
	}
	return nil
}

// GitCloneTimeout returns Git.CloneTimeout parsed as a duration.
func (c *Config) GitCloneTimeout() (time.Duration, error) {
	if c.Git.CloneTimeout == "" {
		return 60 * time.Second, nil
	}
	return time.ParseDuration(c.Git.CloneTimeout)
}

// LoggingSettings projects LoggingConfig into logging.Settings.
func (c *Config) LoggingSettings() logging.Settings {
	return logging.Settings{
		Enabled:    c.Logging.Enabled,
		Level:      c.Logging.Level,
		Categories: c.Logging.Categories,
	}
}

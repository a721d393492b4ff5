// Package config loads the integrity checker's configuration from YAML
// files and environment variables via viper. Config file locations, in
// order of precedence:
//   - $XDG_CONFIG_HOME/integrity/config.yaml
//   - $HOME/.config/integrity/config.yaml
//
// Environment variables use the INTEGRITY_ prefix, e.g.
// INTEGRITY_WORKERS. Command-line flags override everything.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jamesainslie/integrity/pkg/integrity/cache"
	"github.com/jamesainslie/integrity/pkg/integrity/journal"
	"github.com/jamesainslie/integrity/pkg/integrity/metrics"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Components   map[string]string `mapstructure:"components"`
}

// CacheConfig configures the metrics cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// JournalConfig configures the operations journal.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Features metrics.Features `mapstructure:"features"`
	Workers  int              `mapstructure:"workers"`
	Exclude  []string         `mapstructure:"exclude"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Journal  JournalConfig    `mapstructure:"journal"`
	Logging  LoggingConfig    `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "integrity"))
	}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "integrity"))
	}

	v.SetEnvPrefix("INTEGRITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every default value on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("features.sha2", DefaultSHA2)
	v.SetDefault("features.blake2b", DefaultBlake2b)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("exclude", DefaultExclusions)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", cache.DefaultPath())

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", journal.DefaultPath())
	v.SetDefault("journal.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.console_level", "")
	v.SetDefault("logging.components", map[string]string{
		"builder": "info",
		"codec":   "info",
	})
}

// ConfigDir returns the directory holding the config file, creating it
// if needed.
func ConfigDir() (string, error) {
	var dir string
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		dir = filepath.Join(xdgConfigHome, "integrity")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".config", "integrity")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// defaultConfigYAML is the commented config file written by WriteDefault.
const defaultConfigYAML = `# integrity configuration file
#
# Digests recorded for every file. Size, NUL, and non-ASCII flags are
# always recorded regardless of this setting.
features:
  sha2: true
  blake2b: false

# Hashing worker count. 1 means a plain sequential walk.
workers: 1

# Glob patterns excluded from every build.
exclude: []

# Metrics cache: reuses digests for files whose size and mtime are
# unchanged since the last build.
cache:
  enabled: false
  # path: ~/.cache/integrity/cache

# Operations journal.
journal:
  enabled: true
  retention_days: 90

logging:
  level: info
  # path: ~/.local/state/integrity/integrity.log
  # console_level: warn
`

// WriteDefault creates the default config file if none exists.
func WriteDefault() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home directory: %w", err)
		}
		if path == "~" {
			return homeDir, nil
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// Package config provides configuration file parsing for pollwatch.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Dir returns the pollwatch config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/pollwatch if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pollwatch"), nil
}

// DataDir returns ~/.pollwatch, where the journal, hint log and daemon files
// live by default.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".pollwatch"), nil
}

// DefaultPath returns the config file location used when --config is not given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Config is the on-disk configuration.
type Config struct {
	Interval      time.Duration `yaml:"interval" validate:"gt=0"`
	FullScanEvery int           `yaml:"full_scan_every" validate:"gte=1"`
	Database      string        `yaml:"database" validate:"required"`
	HintsLog      string        `yaml:"hints_log" validate:"required"`
	NativeHints   bool          `yaml:"native_hints"`
	MetricsAddr   string        `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	Log           Log           `yaml:"log"`
	Watches       []Watch       `yaml:"watches" validate:"dive"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json logfmt"`
}

// Watch is one configured watch request.
type Watch struct {
	Path string `yaml:"path" validate:"required"`
	Mode string `yaml:"mode" validate:"omitempty,oneof=file shallow dir directory subtree tree recursive"`
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Interval:      2 * time.Second,
		FullScanEvery: 5,
		Database:      filepath.Join(dataDir, "pollwatch.db"),
		HintsLog:      filepath.Join(dataDir, "hints.log"),
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}, nil
}

// Load reads the YAML file at path over the defaults and validates the
// result. A missing file yields the defaults without an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expand resolves a leading "~" in every path field.
func (c *Config) expand() error {
	var err error
	if c.Database, err = ExpandHome(c.Database); err != nil {
		return err
	}
	if c.HintsLog, err = ExpandHome(c.HintsLog); err != nil {
		return err
	}
	for i := range c.Watches {
		if c.Watches[i].Path, err = ExpandHome(c.Watches[i].Path); err != nil {
			return err
		}
	}
	return nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

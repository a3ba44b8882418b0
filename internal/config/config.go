// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the database DSN comes from the
// environment or the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"empbridge/cli/internal/xdg"
)

// Environment variables recognized by the CLI.
const (
	EnvLogLevel    = "EMPBRIDGE_LOG_LEVEL"
	EnvChannelAddr = "EMPBRIDGE_CHANNEL_ADDR"
	EnvMetricsAddr = "EMPBRIDGE_METRICS_ADDR"
	EnvDSN         = "EMPBRIDGE_DSN"
	EnvDatabaseURL = "DATABASE_URL"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel         string        `json:"log_level"`
	LogFormat        string        `json:"log_format"`
	Channel          ChannelConfig `json:"channel"`
	Metrics          MetricsConfig `json:"metrics"`
	StrictUpdate     bool          `json:"strict_update"`
	ErrorDetails     bool          `json:"error_details"`
	OperationTimeout string        `json:"operation_timeout"`
}

// ChannelConfig holds the method channel endpoint.
type ChannelConfig struct {
	Address string `json:"address"`
	TLS     bool   `json:"tls"`
}

// MetricsConfig holds the metrics endpoint. An empty address disables it.
type MetricsConfig struct {
	Address string `json:"address"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Channel:          ChannelConfig{Address: "127.0.0.1:50051"},
		Metrics:          MetricsConfig{Address: "127.0.0.1:9464"},
		OperationTimeout: "0",
	}
}

// Timeout parses OperationTimeout. Empty and "0" mean no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.OperationTimeout == "" || c.OperationTimeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.OperationTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid operation_timeout %q: %w", c.OperationTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid operation_timeout %q: must not be negative", c.OperationTimeout)
	}
	return d, nil
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadDotEnv loads a .env file from the working directory, if any.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Load reads configuration and applies environment overrides; a missing file
// yields defaults.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Defaults(), err
	}
	c, err := loadFile(p)
	if err != nil {
		return c, err
	}
	applyEnv(&c)
	return c, nil
}

func loadFile(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Defaults(), fmt.Errorf("parse %s: %w", p, err)
	}
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvChannelAddr); v != "" {
		c.Channel.Address = v
	}
	if v, ok := os.LookupEnv(EnvMetricsAddr); ok {
		c.Metrics.Address = v
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Package appconfig loads and writes the CLI's YAML configuration.
package appconfig

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Server        ServerConfig  `mapstructure:"server" yaml:"server"`
	Retry         RetryConfig   `mapstructure:"retry" yaml:"retry"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ServerConfig names the forge server and connect behavior.
type ServerConfig struct {
	URL                   string `mapstructure:"url" yaml:"url"`
	ConnectTimeoutSeconds int    `mapstructure:"connect_timeout_seconds" yaml:"connect_timeout_seconds"`
}

// ConnectTimeout returns the connect timeout as a duration.
func (c ServerConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// RetryConfig controls live-connection reconnect behavior.
type RetryConfig struct {
	BaseSeconds int `mapstructure:"base_seconds" yaml:"base_seconds"`
	CapSeconds  int `mapstructure:"cap_seconds" yaml:"cap_seconds"`
	MaxRetries  int `mapstructure:"max_retries" yaml:"max_retries"`
}

// Base returns the backoff base as a duration.
func (c RetryConfig) Base() time.Duration {
	return time.Duration(c.BaseSeconds) * time.Second
}

// Cap returns the backoff cap as a duration.
func (c RetryConfig) Cap() time.Duration {
	return time.Duration(c.CapSeconds) * time.Second
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Mode  string `mapstructure:"mode" yaml:"mode"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".forgeline", "sessions"),
		Server: ServerConfig{
			URL:                   "",
			ConnectTimeoutSeconds: 30,
		},
		Retry: RetryConfig{
			BaseSeconds: 1,
			CapSeconds:  30,
			MaxRetries:  5,
		},
		Logging: LoggingConfig{
			Level: "info",
			Mode:  "console",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".forgeline", "config.yaml"), nil
}

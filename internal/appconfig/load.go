package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.connect_timeout_seconds", cfg.Server.ConnectTimeoutSeconds)
	v.SetDefault("retry.base_seconds", cfg.Retry.BaseSeconds)
	v.SetDefault("retry.cap_seconds", cfg.Retry.CapSeconds)
	v.SetDefault("retry.max_retries", cfg.Retry.MaxRetries)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.mode", cfg.Logging.Mode)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	if err := validateServerConfig(cfg.Server); err != nil {
		return Config{}, err
	}
	if err := validateRetryConfig(cfg.Retry); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateServerConfig(cfg ServerConfig) error {
	serverURL := strings.TrimSpace(cfg.URL)
	if serverURL == "" {
		return nil
	}
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.url must include scheme and host (e.g. https://forge.example.com)")
	}
	return nil
}

func validateRetryConfig(cfg RetryConfig) error {
	if cfg.BaseSeconds < 0 || cfg.CapSeconds < 0 || cfg.MaxRetries < 0 {
		return fmt.Errorf("retry settings must not be negative")
	}
	if cfg.CapSeconds > 0 && cfg.BaseSeconds > cfg.CapSeconds {
		return fmt.Errorf("retry.base_seconds must not exceed retry.cap_seconds")
	}
	return nil
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

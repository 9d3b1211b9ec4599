// Package config resolves merger's runtime settings from defaults, an
// optional settings file, and MERGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	// ConfigDir holds the config store and the managed plugin dir.
	ConfigDir string

	// Jobs bounds how many files are parsed concurrently.
	Jobs int

	// LogLevel is the default CLI log level ("debug", "info", ...).
	LogLevel string
}

// Load resolves settings with the usual precedence: environment
// variables (MERGER_CONFIG_DIR, MERGER_JOBS, MERGER_LOG_LEVEL) override
// the optional merger.yaml in the config dir, which overrides defaults.
// A missing settings file is fine.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MERGER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaultDir, err := defaultConfigDir()
	if err != nil {
		return nil, err
	}
	v.SetDefault("config_dir", defaultDir)
	v.SetDefault("jobs", runtime.NumCPU())
	v.SetDefault("log_level", "info")

	configDir := v.GetString("config_dir")

	v.SetConfigName("merger")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
	}

	cfg := &Config{
		ConfigDir: v.GetString("config_dir"),
		Jobs:      v.GetInt("jobs"),
		LogLevel:  v.GetString("log_level"),
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, nil
}

// StorePath is the location of the persisted plugin config document.
func (c *Config) StorePath() string {
	return filepath.Join(c.ConfigDir, "config.json")
}

// PluginsDir is the managed store holding installed plugin artifacts.
func (c *Config) PluginsDir() string {
	return filepath.Join(c.ConfigDir, "parsers")
}

func defaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, "merger"), nil
}

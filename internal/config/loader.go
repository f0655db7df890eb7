// Package config provides centralized configuration management for the
// work-order service. Defaults are registered by the CLI layer via viper;
// Load unmarshals the merged view into the typed Config struct.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// Load unmarshals the merged viper state into a typed Config struct.
// Safe to call multiple times (e.g. for config reload).
func Load() (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	setConfig(cfg)

	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if strings.TrimSpace(dataDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./woms.db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "woms", "woms.db")
}

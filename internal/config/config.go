// Package config loads the shared-store connection settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrNotConfigured means no shared-store settings exist. The app runs with
// leaderboard and presence disabled; local tracking is unaffected.
var ErrNotConfigured = errors.New("shared store not configured")

// Config holds the settings for reaching the shared leaderboard store.
type Config struct {
	CloudDSN          string        `toml:"cloud_dsn"`
	SyncInterval      time.Duration `toml:"-"`
	HeartbeatInterval time.Duration `toml:"-"`

	SyncIntervalStr      string `toml:"sync_interval"`
	HeartbeatIntervalStr string `toml:"heartbeat_interval"`
}

// DefaultPath returns <UserConfigDir>/worklog/config.toml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "worklog", "config.toml"), nil
}

// Load reads the TOML config at path. The WORKLOG_CLOUD_DSN environment
// variable overrides the file's DSN. A missing file with no env override
// returns ErrNotConfigured.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if dsn := os.Getenv("WORKLOG_CLOUD_DSN"); dsn != "" {
		cfg.CloudDSN = dsn
	}
	if cfg.CloudDSN == "" {
		return nil, ErrNotConfigured
	}

	cfg.SyncInterval = parseInterval(cfg.SyncIntervalStr, 5*time.Minute)
	cfg.HeartbeatInterval = parseInterval(cfg.HeartbeatIntervalStr, 30*time.Second)
	return cfg, nil
}

func parseInterval(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

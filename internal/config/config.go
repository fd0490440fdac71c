// Package config resolves the settings that govern storage paths, region
// filtering, and freeze cadence, from flag overrides, environment, and an
// optional config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the ~/.memscan/config.toml shape.
type Config struct {
	StoragePrefix    string   `toml:"storage_prefix,omitempty"`
	IgnoreListExtra  []string `toml:"ignore_list_extra,omitempty"`
	FreezeIntervalMS int      `toml:"freeze_interval_ms,omitempty"`
}

// FreezeInterval returns the configured freeze rewrite interval, defaulting
// to 1ms when unset.
func (c Config) FreezeInterval() time.Duration {
	if c.FreezeIntervalMS <= 0 {
		return time.Millisecond
	}
	return time.Duration(c.FreezeIntervalMS) * time.Millisecond
}

// configDirOverride is set by the --config-dir flag.
var configDirOverride string

// SetConfigDir allows the CLI to pass in the --config-dir value.
func SetConfigDir(dir string) {
	configDirOverride = dir
}

// Home returns the config directory. Precedence: --config-dir /
// SetConfigDir > MEMSCAN_HOME env > ~/.memscan.
func Home() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if v := os.Getenv("MEMSCAN_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".memscan")
	}
	return filepath.Join(home, ".memscan")
}

// Path returns the full path to config.toml.
func Path() string {
	return filepath.Join(Home(), "config.toml")
}

// Load reads config.toml and returns a Config. A missing file yields the
// zero-value Config (all defaults).
func Load() (Config, error) {
	var cfg Config
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config.toml: %w", err)
	}
	return cfg, nil
}

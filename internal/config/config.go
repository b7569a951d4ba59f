package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Config is the optional on-disk configuration. Command-line flags override
// every field.
type Config struct {
	// Database is a SQLite path, a .json path, or a postgres:// URL
	// without a password.
	Database  string         `toml:"database"`
	Timezone  string         `toml:"timezone"`
	Debug     bool           `toml:"debug"`
	Reminders ReminderConfig `toml:"reminders"`
}

type ReminderConfig struct {
	// Enabled defaults to true when missing from the file.
	Enabled   *bool `toml:"enabled,omitempty"`
	WindowMin int   `toml:"window_min"`
}

func (r ReminderConfig) IsEnabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// Window returns the reminder lookback window.
func (r ReminderConfig) Window() time.Duration {
	if r.WindowMin <= 0 {
		return constants.DefaultReminderWindow
	}
	return time.Duration(r.WindowMin) * time.Minute
}

func BoolPtr(v bool) *bool {
	return &v
}

func Default() *Config {
	return &Config{
		Database: filepath.Join(constants.DefaultConfigDir, constants.DefaultDBName),
		Timezone: "Local",
		Reminders: ReminderConfig{
			Enabled:   BoolPtr(true),
			WindowMin: int(constants.DefaultReminderWindow / time.Minute),
		},
	}
}

// DefaultPath returns the expanded location of config.toml.
func DefaultPath() string {
	return filepath.Join(ExpandHome(constants.DefaultConfigDir), constants.ConfigFileName)
}

// Load reads path, returning defaults when the file does not exist. Fields
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	if c.Reminders.WindowMin < 0 {
		return fmt.Errorf("reminders.window_min must not be negative, got %d", c.Reminders.WindowMin)
	}
	return nil
}

// Location resolves the configured timezone, falling back to the system zone.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

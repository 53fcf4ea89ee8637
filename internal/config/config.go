package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Identity IdentityConfig
	UI       UIConfig
	Submit   SubmitConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string // sqlite3 or postgres
	Path   string // sqlite file
	DSN    string // postgres connection string
}

// IdentityConfig overrides the startup stored in prefs.
type IdentityConfig struct {
	StartupID   string `mapstructure:"startup_id"`
	StartupName string `mapstructure:"startup_name"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	NextURL     string        `mapstructure:"next_url"`
	CellWidthPx float64       `mapstructure:"cell_width_px"`
	Animate     bool          `mapstructure:"animate"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// SubmitConfig bounds response persistence.
type SubmitConfig struct {
	Timeout time.Duration
}

// CatalogConfig points at an optional YAML pattern catalog.
type CatalogConfig struct {
	Path  string
	Watch bool
}

// LogConfig controls the file logger. The terminal belongs to the TUI.
type LogConfig struct {
	Path  string
	Level string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "patterndeck")
}

// Load reads configuration from .env, file and env. Env var overrides use prefix PATTERNDECK_.
func Load() (Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", filepath.Join(dataDir(), "patterndeck.db"))
	v.SetDefault("database.dsn", "")
	v.SetDefault("identity.startup_id", "")
	v.SetDefault("identity.startup_name", "")
	v.SetDefault("ui.next_url", "/explore")
	v.SetDefault("ui.cell_width_px", 8.0)
	v.SetDefault("ui.animate", true)
	v.SetDefault("ui.settle_delay", "100ms")
	v.SetDefault("submit.timeout", "10s")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)
	v.SetDefault("log.path", filepath.Join(dataDir(), "patterndeck.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PATTERNDECK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "patterndeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PATTERNDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("config: database.path required for sqlite3")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.dsn required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	if !strings.HasPrefix(c.UI.NextURL, "/") {
		return fmt.Errorf("config: ui.next_url must be a path, got %q", c.UI.NextURL)
	}
	if c.UI.CellWidthPx <= 0 {
		return fmt.Errorf("config: ui.cell_width_px must be positive")
	}
	if c.UI.SettleDelay < 0 || c.Submit.Timeout < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// It is used by the init-config command.
func Save(cfg Config) error {
	path := os.Getenv("PATTERNDECK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "patterndeck", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.driver", cfg.Database.Driver)
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.dsn", cfg.Database.DSN)
	v.Set("identity.startup_id", cfg.Identity.StartupID)
	v.Set("identity.startup_name", cfg.Identity.StartupName)
	v.Set("ui.next_url", cfg.UI.NextURL)
	v.Set("ui.cell_width_px", cfg.UI.CellWidthPx)
	v.Set("ui.animate", cfg.UI.Animate)
	v.Set("ui.settle_delay", cfg.UI.SettleDelay.String())
	v.Set("submit.timeout", cfg.Submit.Timeout.String())
	v.Set("catalog.path", cfg.Catalog.Path)
	v.Set("catalog.watch", cfg.Catalog.Watch)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

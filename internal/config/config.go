// ABOUTME: Growth configuration management with backend selection.
// ABOUTME: Merges the JSON config file with GROWTH_* env vars via viper and opens storage.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/growth/internal/charm"
	"github.com/harperreed/growth/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Backends accepted by OpenStorage.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendCharm    = "charm"
	BackendBadger   = "badger"
)

// Backends lists every valid backend name.
var Backends = []string{BackendSQLite, BackendPostgres, BackendCharm, BackendBadger}

// EnvPrefix prefixes every environment override, e.g. GROWTH_BACKEND.
const EnvPrefix = "GROWTH"

const (
	defaultCreatorID = "local"
	defaultMaxConns  = 10
	defaultMinConns  = 1
	defaultLogLevel  = "warn"
	defaultLogFormat = "auto"
	configFileName   = "config.json"
	configDirName    = "growth"
	sqliteFileName   = "growth.db"
	badgerDirName    = "badger"
)

// Config stores growth tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "postgres",
	// "charm" or "badger".
	Backend string `mapstructure:"backend" json:"backend,omitempty"`

	// DataDir is the root directory for local storage.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/growth.
	DataDir string `mapstructure:"data_dir" json:"data_dir,omitempty"`

	// DatabaseURL is the Postgres connection string for the postgres backend.
	DatabaseURL string `mapstructure:"database_url" json:"database_url,omitempty"`
	DBMaxConns  int32  `mapstructure:"db_max_conns" json:"db_max_conns,omitempty"`
	DBMinConns  int32  `mapstructure:"db_min_conns" json:"db_min_conns,omitempty"`

	// CreatorID tags new measurements and scopes listings.
	CreatorID string `mapstructure:"creator_id" json:"creator_id,omitempty"`

	LogLevel  string `mapstructure:"log_level" json:"log_level,omitempty"`
	LogFormat string `mapstructure:"log_format" json:"log_format,omitempty"`
}

var keys = []string{
	"backend", "data_dir", "database_url", "db_max_conns", "db_min_conns",
	"creator_id", "log_level", "log_format",
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetBadgerDir returns the directory of the badger backend.
func (c *Config) GetBadgerDir() string {
	return filepath.Join(c.GetDataDir(), badgerDirName)
}

// GetCreatorID returns the configured creator, defaulting to "local".
func (c *Config) GetCreatorID() string {
	if c.CreatorID == "" {
		return defaultCreatorID
	}
	return c.CreatorID
}

// GetPoolSize returns the Postgres pool bounds with defaults applied.
func (c *Config) GetPoolSize() (maxConns, minConns int32) {
	maxConns, minConns = c.DBMaxConns, c.DBMinConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	if minConns <= 0 {
		minConns = defaultMinConns
	}
	return maxConns, minConns
}

// GetLogLevel returns the log level, defaulting to "warn".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return defaultLogLevel
	}
	return c.LogLevel
}

// GetLogFormat returns the log format, defaulting to "auto".
func (c *Config) GetLogFormat() string {
	if c.LogFormat == "" {
		return defaultLogFormat
	}
	return c.LogFormat
}

// Validate checks the backend name and backend-specific settings.
func (c *Config) Validate() error {
	backend := c.GetBackend()
	known := false
	for _, b := range Backends {
		if b == backend {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown backend: %q (use %s)", c.Backend, strings.Join(Backends, ", "))
	}
	if backend == BackendPostgres && c.DatabaseURL == "" {
		return errors.New("postgres backend requires database_url (or GROWTH_DATABASE_URL)")
	}
	if maxConns, minConns := c.GetPoolSize(); minConns > maxConns {
		return fmt.Errorf("db_min_conns (%d) exceeds db_max_conns (%d)", minConns, maxConns)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context, log zerolog.Logger) (storage.Repository, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	backend := c.GetBackend()
	dataDir := c.GetDataDir()
	log.Debug().Str("backend", backend).Str("data_dir", dataDir).Msg("opening storage")

	switch backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, sqliteFileName))
	case BackendPostgres:
		maxConns, minConns := c.GetPoolSize()
		return storage.OpenPostgres(ctx, c.DatabaseURL, maxConns, minConns)
	case BackendCharm:
		return charm.InitClient(log)
	case BackendBadger:
		return charm.OpenLocal(c.GetBadgerDir(), log)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, configDirName, configFileName)
}

// Load reads the config file, if any, and applies GROWTH_* env overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(GetConfigPath())
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if _, err := os.Stat(GetConfigPath()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

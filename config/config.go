// Package config handles wallet configuration.
//
// Settings come from built-in defaults, then <datadir>/webcash.yaml, then
// WEBCASH_* environment variables (WEBCASH_LEDGER_URL overrides ledger.url).
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds wallet runtime configuration.
type Config struct {
	DataDir string `mapstructure:"datadir"`

	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// LedgerConfig holds the remote ledger endpoint.
type LedgerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WalletConfig holds reconciliation and recovery tuning.
type WalletConfig struct {
	GapLimit  int `mapstructure:"gap_limit"`
	BatchSize int `mapstructure:"batch_size"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StorageConfig selects where wallet contents are persisted.
type StorageConfig struct {
	Backend   string         `mapstructure:"backend"`
	Name      string         `mapstructure:"name"`
	File      string         `mapstructure:"file"`
	BadgerDir string         `mapstructure:"badger_dir"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.webcash
//	macOS:   ~/Library/Application Support/Webcash
//	Windows: %APPDATA%\Webcash
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webcash"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Webcash")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Webcash")
		}
		return filepath.Join(home, "AppData", "Roaming", "Webcash")
	default:
		return filepath.Join(home, ".webcash")
	}
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, ConfigFileName)
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// resolvePaths fills storage paths left empty with locations under DataDir.
func (c *Config) resolvePaths() {
	if c.Storage.File == "" {
		c.Storage.File = filepath.Join(c.DataDir, DefaultWalletFile)
	}
	if c.Storage.BadgerDir == "" {
		c.Storage.BadgerDir = filepath.Join(c.DataDir, "db")
	}
}

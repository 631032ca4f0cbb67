package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: WEBCASH_STORAGE_BACKEND -> storage.backend.
const EnvPrefix = "WEBCASH"

// Load reads <dataDir>/webcash.yaml, applies WEBCASH_* environment overrides
// and validates the result. A missing file is not an error.
func Load(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return LoadFile(dataDir, filepath.Join(dataDir, ConfigFileName))
}

// LoadFile is Load with an explicit config file path.
func LoadFile(dataDir, path string) (*Config, error) {
	v := newViper(DefaultIn(dataDir))

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.DataDir = dataDir
	cfg.resolvePaths()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViper registers every key with its default so environment overrides
// apply even when the file omits the key.
func newViper(def *Config) *viper.Viper {
	v := viper.New()

	v.SetDefault("ledger.url", def.Ledger.URL)
	v.SetDefault("ledger.timeout", def.Ledger.Timeout.String())
	v.SetDefault("wallet.gap_limit", def.Wallet.GapLimit)
	v.SetDefault("wallet.batch_size", def.Wallet.BatchSize)
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.name", def.Storage.Name)
	v.SetDefault("storage.file", "")
	v.SetDefault("storage.badger_dir", "")
	v.SetDefault("storage.redis.addr", def.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// EnsureDataDirs creates the data and logs directories with owner-only access.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteDefaultConfig writes a config file holding the defaults for dataDir.
// An existing file is left untouched.
func WriteDefaultConfig(dataDir string) (string, error) {
	path := filepath.Join(dataDir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("create %s: %w", dataDir, err)
	}

	v := newViper(DefaultIn(dataDir))
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

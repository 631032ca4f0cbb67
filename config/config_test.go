package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIn(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultIn(dir)

	assert.Equal(t, "https://webcash.org", cfg.Ledger.URL)
	assert.Equal(t, 10*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, 20, cfg.Wallet.GapLimit)
	assert.Equal(t, 25, cfg.Wallet.BatchSize)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, DefaultWalletFile), cfg.Storage.File)
	assert.Equal(t, filepath.Join(dir, "db"), cfg.Storage.BadgerDir)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFile())
	require.NoError(t, Validate(cfg))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultIn(dir), cfg)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
ledger:
  url: "http://127.0.0.1:8000"
  timeout: "3s"
wallet:
  gap_limit: 5
  batch_size: 10
storage:
  backend: "redis"
  name: "savings"
  redis:
    addr: "redis.local:6380"
    password: "pw"
    db: 2
log:
  level: "debug"
  json: true
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.Ledger.URL)
	assert.Equal(t, 3*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, 5, cfg.Wallet.GapLimit)
	assert.Equal(t, 10, cfg.Wallet.BatchSize)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "savings", cfg.Storage.Name)
	assert.Equal(t, "redis.local:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, "pw", cfg.Storage.Redis.Password)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, filepath.Join(dir, DefaultWalletFile), cfg.Storage.File)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WEBCASH_LEDGER_URL", "https://ledger.example.com")
	t.Setenv("WEBCASH_WALLET_GAP_LIMIT", "50")
	t.Setenv("WEBCASH_STORAGE_BACKEND", "memory")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://ledger.example.com", cfg.Ledger.URL)
	assert.Equal(t, 50, cfg.Wallet.GapLimit)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("ledger: [unclosed"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("storage:\n  backend: floppy\n"), 0600))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url scheme", func(c *Config) { c.Ledger.URL = "ftp://webcash.org" }},
		{"url without host", func(c *Config) { c.Ledger.URL = "https://" }},
		{"zero timeout", func(c *Config) { c.Ledger.Timeout = 0 }},
		{"zero gap limit", func(c *Config) { c.Wallet.GapLimit = 0 }},
		{"negative batch size", func(c *Config) { c.Wallet.BatchSize = -1 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "tape" }},
		{"file without path", func(c *Config) { c.Storage.File = "" }},
		{"badger without dir", func(c *Config) {
			c.Storage.Backend = BackendBadger
			c.Storage.BadgerDir = ""
		}},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.Redis.Addr = ""
		}},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }},
		{"redis without name", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.Name = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultIn(t.TempDir())
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}

	assert.Error(t, Validate(nil))
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wallet")

	path, err := WriteDefaultConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultIn(dir), cfg)

	// A second call keeps the existing file.
	require.NoError(t, os.WriteFile(path, []byte("wallet:\n  gap_limit: 7\n"), 0600))
	_, err = WriteDefaultConfig(dir)
	require.NoError(t, err)
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Wallet.GapLimit)
}

func TestEnsureDataDirs(t *testing.T) {
	cfg := DefaultIn(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, EnsureDataDirs(cfg))

	for _, dir := range []string{cfg.DataDir, cfg.LogsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

package config

import "time"

// File names under the data directory.
const (
	ConfigFileName    = "webcash.yaml"
	DefaultWalletFile = "default_wallet.webcash"
)

// Default returns the default configuration rooted at DefaultDataDir.
func Default() *Config {
	return DefaultIn(DefaultDataDir())
}

// DefaultIn returns the default configuration rooted at dataDir.
func DefaultIn(dataDir string) *Config {
	cfg := &Config{
		DataDir: dataDir,
		Ledger: LedgerConfig{
			URL:     "https://webcash.org",
			Timeout: 10 * time.Second,
		},
		Wallet: WalletConfig{
			GapLimit:  20,
			BatchSize: 25,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Name:    "default",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
	cfg.resolvePaths()
	return cfg
}

package config

import (
	"fmt"
	"net/url"
)

// Validate checks config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	u, err := url.Parse(cfg.Ledger.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ledger.url must be an http(s) URL, got %q", cfg.Ledger.URL)
	}
	if cfg.Ledger.Timeout <= 0 {
		return fmt.Errorf("ledger.timeout must be positive")
	}
	if cfg.Wallet.GapLimit <= 0 {
		return fmt.Errorf("wallet.gap_limit must be positive")
	}
	if cfg.Wallet.BatchSize <= 0 {
		return fmt.Errorf("wallet.batch_size must be positive")
	}

	return validateStorage(&cfg.Storage)
}

func validateStorage(s *StorageConfig) error {
	switch s.Backend {
	case BackendMemory:
	case BackendFile:
		if s.File == "" {
			return fmt.Errorf("storage.file is required for the file backend")
		}
	case BackendBadger:
		if s.BadgerDir == "" {
			return fmt.Errorf("storage.badger_dir is required for the badger backend")
		}
	case BackendRedis:
		if s.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis backend")
		}
		if s.Redis.DB < 0 {
			return fmt.Errorf("storage.redis.db must not be negative")
		}
	case BackendPostgres:
		if s.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be memory, file, badger, redis, or postgres, got %q", s.Backend)
	}

	if s.Backend != BackendFile && s.Backend != BackendMemory && s.Name == "" {
		return fmt.Errorf("storage.name is required for the %s backend", s.Backend)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Klingon-tech/webcash-wallet/config"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// Open returns the wallet.Store selected by cfg. The closer releases the
// backend connection and must be called when the wallet is done.
// passphrase is only used by the file backend; empty means plain JSON.
func Open(ctx context.Context, cfg config.StorageConfig, passphrase []byte) (wallet.Store, io.Closer, error) {
	klog.Storage.Debug().Str("backend", cfg.Backend).Str("name", cfg.Name).Msg("Opening wallet store")

	switch cfg.Backend {
	case config.BackendMemory:
		return NewKVStore(NewMemory(), cfg.Name), nopCloser, nil

	case config.BackendFile:
		if len(passphrase) > 0 {
			return NewSealedFileStore(cfg.File, passphrase, DefaultSealParams()), nopCloser, nil
		}
		return NewFileStore(cfg.File), nopCloser, nil

	case config.BackendBadger:
		db, err := NewBadger(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return NewKVStore(db, cfg.Name), db, nil

	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, cfg.Name), client, nil

	case config.BackendPostgres:
		pool, err := NewPostgresPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(pool, cfg.Name)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, closerFunc(func() error { pool.Close(); return nil }), nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown storage backend %q", wallet.ErrConfiguration, cfg.Backend)
	}
}

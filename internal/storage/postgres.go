package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS webcash_wallets (
	name       TEXT PRIMARY KEY,
	contents   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps wallets as JSONB rows keyed by name.
type PostgresStore struct {
	pool Pool
	name string
}

// NewPostgresStore returns a store for the wallet called name.
func NewPostgresStore(pool Pool, name string) *PostgresStore {
	return &PostgresStore{pool: pool, name: name}
}

// NewPostgresPool connects to dsn and verifies connectivity.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	klog.Storage.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("dbname", poolCfg.ConnConfig.Database).
		Msg("PostgreSQL connection pool established")
	return pool, nil
}

// EnsureSchema creates the wallet table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create wallet table: %w", err)
	}
	return nil
}

// Load implements wallet.Store.
func (s *PostgresStore) Load(ctx context.Context) (*wallet.Contents, error) {
	query := `SELECT contents FROM webcash_wallets WHERE name = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, s.name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, noWallet(s.name)
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet %q: %w", s.name, err)
	}
	return decodeContents(data)
}

// Save implements wallet.Store.
func (s *PostgresStore) Save(ctx context.Context, c *wallet.Contents) error {
	query := `INSERT INTO webcash_wallets (name, contents, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET contents = EXCLUDED.contents, updated_at = EXCLUDED.updated_at`

	data, err := encodeContents(c)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, s.name, data); err != nil {
		return fmt.Errorf("upsert wallet %q: %w", s.name, err)
	}
	return nil
}

// Remove deletes the stored wallet.
func (s *PostgresStore) Remove(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM webcash_wallets WHERE name = $1`, s.name); err != nil {
		return fmt.Errorf("delete wallet %q: %w", s.name, err)
	}
	return nil
}

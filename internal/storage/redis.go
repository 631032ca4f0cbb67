package storage

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

const redisKeyPrefix = "webcash:wallet:"

// RedisStore keeps a wallet as a single Redis string value.
type RedisStore struct {
	client *goredis.Client
	key    string
}

// NewRedisStore returns a store for the wallet called name.
func NewRedisStore(client *goredis.Client, name string) *RedisStore {
	return &RedisStore{client: client, key: redisKeyPrefix + name}
}

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	klog.Storage.Info().Str("addr", addr).Int("db", db).Msg("Redis connection established")
	return client, nil
}

// Load implements wallet.Store.
func (s *RedisStore) Load(ctx context.Context) (*wallet.Contents, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, noWallet(s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeContents(data)
}

// Save implements wallet.Store.
func (s *RedisStore) Save(ctx context.Context, c *wallet.Contents) error {
	data, err := encodeContents(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Remove deletes the stored wallet.
func (s *RedisStore) Remove(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

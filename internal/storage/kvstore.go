package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

const (
	kvNamespace = "webcash/"
	kvWallets   = "wallet/"
)

// KVStore keeps named wallets in a DB under "webcash/wallet/<name>".
type KVStore struct {
	ns   *Namespace
	name string
}

// NewKVStore returns a store for the wallet called name.
func NewKVStore(db DB, name string) *KVStore {
	return &KVStore{ns: NewNamespace(db, kvNamespace), name: name}
}

// NewMemoryStore returns a volatile store, mainly for tests and dry runs.
func NewMemoryStore() *KVStore {
	return NewKVStore(NewMemory(), "default")
}

// Load implements wallet.Store.
func (s *KVStore) Load(ctx context.Context) (*wallet.Contents, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.ns.Get(kvWallets + s.name)
	if errors.Is(err, ErrNotFound) {
		return nil, noWallet(s.name)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet %q: %w", s.name, err)
	}
	return decodeContents(data)
}

// Save implements wallet.Store.
func (s *KVStore) Save(ctx context.Context, c *wallet.Contents) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeContents(c)
	if err != nil {
		return err
	}
	if err := s.ns.Put(kvWallets+s.name, data); err != nil {
		return fmt.Errorf("write wallet %q: %w", s.name, err)
	}
	klog.Storage.Debug().Str("wallet", s.name).Int("bytes", len(data)).Msg("Wallet saved")
	return nil
}

// Remove deletes the stored wallet.
func (s *KVStore) Remove() error {
	return s.ns.Delete(kvWallets + s.name)
}

// Names lists every wallet kept in the same DB, in key order.
func (s *KVStore) Names() ([]string, error) {
	keys, err := s.ns.Keys(kvWallets)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, kvWallets)
	}
	return keys, nil
}

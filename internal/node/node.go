// Package node assembles a ready-to-use wallet from configuration so it can
// be embedded in any binary.
package node

import (
	"context"
	"fmt"
	"io"

	"github.com/Klingon-tech/webcash-wallet/config"
	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/internal/storage"
	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

// Node is a wallet wired to its ledger client and store.
type Node struct {
	cfg    *config.Config
	wallet *wallet.Wallet
	ledger *ledger.Client
	store  io.Closer
}

// New validates cfg, initializes logging, connects the configured store and
// opens (or creates) the wallet in it. passphrase seals the wallet file when
// the file backend is used; empty means plain JSON.
func New(ctx context.Context, cfg *config.Config, passphrase []byte) (*Node, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrConfiguration, err)
	}
	if err := config.EnsureDataDirs(cfg); err != nil {
		return nil, err
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client := ledger.NewWithTimeout(cfg.Ledger.URL, cfg.Ledger.Timeout)

	store, closer, err := storage.Open(ctx, cfg.Storage, passphrase)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	w, err := wallet.Open(ctx, wallet.Config{
		Ledger:    client,
		Store:     store,
		BatchSize: cfg.Wallet.BatchSize,
		GapLimit:  cfg.Wallet.GapLimit,
	})
	if err != nil {
		closer.Close()
		return nil, err
	}

	klog.Wallet.Info().
		Str("ledger", cfg.Ledger.URL).
		Str("backend", cfg.Storage.Backend).
		Msg("Wallet ready")

	return &Node{cfg: cfg, wallet: w, ledger: client, store: closer}, nil
}

// Wallet returns the opened wallet.
func (n *Node) Wallet() *wallet.Wallet { return n.wallet }

// Config returns the configuration the node was built from.
func (n *Node) Config() *config.Config { return n.cfg }

// Close saves the wallet and releases the store.
func (n *Node) Close(ctx context.Context) error {
	saveErr := n.wallet.Save(ctx)
	if err := n.store.Close(); err != nil && saveErr == nil {
		return fmt.Errorf("close store: %w", err)
	}
	return saveErr
}

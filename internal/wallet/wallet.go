// Package wallet implements a deterministic webcash wallet: secrets are
// derived from a single master secret, spent through the ledger's replace
// protocol, and reconciled against the ledger's health check.
//
// A Wallet is not safe for concurrent use. Callers serialize operations on
// a given instance.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/clock"

	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

// Defaults for Config fields left at zero.
const (
	DefaultBatchSize = 25
	DefaultGapLimit  = 20
)

// Ledger is the remote authority the wallet transfers through and checks
// tokens against. *ledger.Client implements it.
type Ledger interface {
	Replace(ctx context.Context, req ledger.ReplaceRequest) error
	HealthCheck(ctx context.Context, tokens []string) (map[string]ledger.Status, error)
}

// Config holds a wallet's collaborators. Store may be nil, in which case
// the wallet is purely in-memory.
type Config struct {
	Ledger    Ledger
	Store     Store
	Clock     clock.Clock
	BatchSize int // Tokens per health check request.
	GapLimit  int // Recovery window used when Recover is given zero.
}

// Wallet holds webcash derived from one master secret.
type Wallet struct {
	master   MasterSecret
	depths   Depths
	holdings []webcash.SecretToken
	pending  []webcash.SecretToken
	history  History
	legalese ledger.Legalese
	version  string

	ledger    Ledger
	store     Store
	clock     clock.Clock
	batchSize int
	gapLimit  int
}

// New creates an empty wallet with a fresh random master secret.
func New(cfg Config) (*Wallet, error) {
	master, err := GenerateMasterSecret()
	if err != nil {
		return nil, err
	}
	return NewFromMaster(cfg, master), nil
}

// NewFromMaster creates an empty wallet at depth zero on every chain.
// Use Recover to rediscover tokens after restoring a master secret.
func NewFromMaster(cfg Config, master MasterSecret) *Wallet {
	w := &Wallet{
		master:    master,
		version:   Version,
		ledger:    cfg.Ledger,
		store:     cfg.Store,
		clock:     cfg.Clock,
		batchSize: cfg.BatchSize,
		gapLimit:  cfg.GapLimit,
	}
	if w.clock == nil {
		w.clock = clock.NewDefaultClock()
	}
	if w.batchSize <= 0 {
		w.batchSize = DefaultBatchSize
	}
	if w.gapLimit <= 0 {
		w.gapLimit = DefaultGapLimit
	}
	return w
}

// RestoreFromMnemonic creates an empty wallet from a backup phrase.
func RestoreFromMnemonic(cfg Config, mnemonic string) (*Wallet, error) {
	master, err := MasterSecretFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return NewFromMaster(cfg, master), nil
}

// FromContents rebuilds a wallet from persisted contents. A missing master
// secret is replaced with a random one.
func FromContents(cfg Config, c *Contents) (*Wallet, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil contents", ErrConfiguration)
	}

	var master MasterSecret
	var err error
	if c.MasterSecret == "" {
		master, err = GenerateMasterSecret()
	} else {
		master, err = ParseMasterSecret(c.MasterSecret)
	}
	if err != nil {
		return nil, err
	}

	w := NewFromMaster(cfg, master)
	w.depths = c.WalletDepths
	w.holdings = cloneTokens(c.Webcash)
	w.pending = cloneTokens(c.Unconfirmed)
	w.history = append(History{}, c.Log...)
	w.legalese = c.Legalese
	if c.Version != "" {
		w.version = c.Version
	}
	return w, nil
}

// Open loads the wallet from cfg.Store, creating and saving a new one when
// the store is empty.
func Open(ctx context.Context, cfg Config) (*Wallet, error) {
	if cfg.Store == nil {
		return New(cfg)
	}

	c, err := cfg.Store.Load(ctx)
	switch {
	case err == nil:
		klog.Wallet.Info().Int("tokens", len(c.Webcash)).Msg("Loaded wallet")
		return FromContents(cfg, c)
	case errors.Is(err, ErrNoWallet):
		w, err := New(cfg)
		if err != nil {
			return nil, err
		}
		klog.Wallet.Info().Msg("Created new wallet")
		return w, w.Save(ctx)
	default:
		return nil, fmt.Errorf("load wallet: %w", err)
	}
}

// Save persists the wallet. Without a store it does nothing.
func (w *Wallet) Save(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	if err := w.store.Save(ctx, w.Contents()); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	klog.Wallet.Debug().Int("tokens", len(w.holdings)).Msg("Saved wallet")
	return nil
}

// MasterSecret returns the wallet's master secret.
func (w *Wallet) MasterSecret() MasterSecret { return w.master }

// Mnemonic returns the backup phrase of the master secret.
func (w *Wallet) Mnemonic() (string, error) { return w.master.Mnemonic() }

// Depth returns the number of secrets consumed on chain.
func (w *Wallet) Depth(chain ChainID) uint64 { return w.depths.Get(chain) }

// Depths returns a copy of every chain's depth.
func (w *Wallet) Depths() Depths { return w.depths }

// Holdings returns a copy of the held tokens in insertion order.
func (w *Wallet) Holdings() []webcash.SecretToken { return cloneTokens(w.holdings) }

// Pending returns a copy of the tokens awaiting confirmation.
func (w *Wallet) Pending() []webcash.SecretToken { return cloneTokens(w.pending) }

// History returns a copy of the wallet log.
func (w *Wallet) History() History { return append(History{}, w.history...) }

// AcceptTerms records acceptance of the ledger's terms of service.
func (w *Wallet) AcceptTerms() { w.legalese.Terms = true }

// TermsAccepted reports whether AcceptTerms has been called.
func (w *Wallet) TermsAccepted() bool { return w.legalese.Terms }

// NextSecret derives the secret at the current depth of chain and advances
// the depth by one.
func (w *Wallet) NextSecret(chain ChainID) string {
	index := w.depths.Get(chain)
	w.depths.Set(chain, index+1)
	return DeriveSecret(w.master, chain, index)
}

// PeekSecret derives the secret at index without touching the depth.
func (w *Wallet) PeekSecret(chain ChainID, index uint64) string {
	return DeriveSecret(w.master, chain, index)
}

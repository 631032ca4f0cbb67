package wallet

import (
	"context"

	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

// Version is the persisted wallet format version.
const Version = "1.0"

// Contents is the persisted form of a wallet.
type Contents struct {
	Version      string                `json:"version"`
	Legalese     ledger.Legalese       `json:"legalese"`
	Webcash      []webcash.SecretToken `json:"webcash"`
	Unconfirmed  []webcash.SecretToken `json:"unconfirmed"`
	Log          History               `json:"log"`
	MasterSecret string                `json:"master_secret"`
	WalletDepths Depths                `json:"walletdepths"`
}

// Store persists wallet contents. Load returns an error wrapping
// ErrNoWallet when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*Contents, error)
	Save(ctx context.Context, c *Contents) error
}

// Contents returns a snapshot of the wallet's persistent state.
func (w *Wallet) Contents() *Contents {
	return &Contents{
		Version:      w.version,
		Legalese:     w.legalese,
		Webcash:      cloneTokens(w.holdings),
		Unconfirmed:  cloneTokens(w.pending),
		Log:          append(History{}, w.history...),
		MasterSecret: w.master.String(),
		WalletDepths: w.depths,
	}
}

func cloneTokens(tokens []webcash.SecretToken) []webcash.SecretToken {
	return append([]webcash.SecretToken{}, tokens...)
}

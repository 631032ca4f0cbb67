package storage

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

func encodeContents(c *wallet.Contents) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal wallet: %w", err)
	}
	return data, nil
}

func decodeContents(data []byte) (*wallet.Contents, error) {
	var c wallet.Contents
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	return &c, nil
}

// noWallet reports an empty backend location. The error matches both
// wallet.ErrNoWallet and ErrNotFound.
func noWallet(where string) error {
	return fmt.Errorf("%w: %s: %w", wallet.ErrNoWallet, where, ErrNotFound)
}

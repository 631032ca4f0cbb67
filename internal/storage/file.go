package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/internal/wallet"
)

// DefaultWalletFile is the file name used when none is configured.
const DefaultWalletFile = "default_wallet.webcash"

// FileStore keeps a wallet in a single JSON file, optionally sealed with a
// passphrase.
type FileStore struct {
	path       string
	passphrase []byte
	params     SealParams
}

// NewFileStore returns a store writing plain JSON to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewSealedFileStore returns a store that seals the file with passphrase.
func NewSealedFileStore(path string, passphrase []byte, params SealParams) *FileStore {
	return &FileStore{path: path, passphrase: append([]byte{}, passphrase...), params: params}
}

// Path returns the wallet file location.
func (s *FileStore) Path() string { return s.path }

// Load implements wallet.Store.
func (s *FileStore) Load(ctx context.Context) (*wallet.Contents, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, noWallet(s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}

	if IsSealed(data) {
		if len(s.passphrase) == 0 {
			return nil, fmt.Errorf("wallet %s is sealed and no passphrase was given", s.path)
		}
		if data, err = Unseal(data, s.passphrase); err != nil {
			return nil, err
		}
	}
	return decodeContents(data)
}

// Save implements wallet.Store. The file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, c *wallet.Contents) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeContents(c)
	if err != nil {
		return err
	}
	if len(s.passphrase) > 0 {
		sealed, err := Seal(data, s.passphrase, s.params)
		clear(data)
		if err != nil {
			return fmt.Errorf("seal wallet: %w", err)
		}
		data = sealed
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create wallet dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".wallet-*")
	if err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("write wallet: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}

	klog.Storage.Debug().Str("path", s.path).Bool("sealed", len(s.passphrase) > 0).Msg("Wallet saved")
	return nil
}

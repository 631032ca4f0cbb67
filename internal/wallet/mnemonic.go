package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicWords is the length of a master secret backup phrase.
const MnemonicWords = 24

// Mnemonic encodes the master secret as a 24-word BIP-39 phrase. The
// phrase carries the secret itself, so it restores every derived token.
func (m MasterSecret) Mnemonic() (string, error) {
	phrase, err := bip39.NewMnemonic(m[:])
	if err != nil {
		return "", fmt.Errorf("encode mnemonic: %w", err)
	}
	return phrase, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// MasterSecretFromMnemonic decodes a phrase produced by Mnemonic.
func MasterSecretFromMnemonic(mnemonic string) (MasterSecret, error) {
	if !ValidateMnemonic(mnemonic) {
		return MasterSecret{}, fmt.Errorf("%w: invalid mnemonic", ErrConfiguration)
	}
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return MasterSecret{}, fmt.Errorf("%w: decode mnemonic: %v", ErrConfiguration, err)
	}
	if len(entropy) != MasterSecretSize {
		return MasterSecret{}, fmt.Errorf("%w: mnemonic has %d bytes of entropy, want %d", ErrConfiguration, len(entropy), MasterSecretSize)
	}
	var m MasterSecret
	copy(m[:], entropy)
	return m, nil
}

package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// MasterSecretSize is the size of the master secret in bytes.
const MasterSecretSize = 32

// MasterSecret is the root of every secret the wallet derives.
type MasterSecret [MasterSecretSize]byte

// GenerateMasterSecret creates a new random master secret.
func GenerateMasterSecret() (MasterSecret, error) {
	var m MasterSecret
	if _, err := rand.Read(m[:]); err != nil {
		return MasterSecret{}, fmt.Errorf("generate master secret: %w", err)
	}
	return m, nil
}

// ParseMasterSecret decodes a hex master secret, with or without a 0x
// prefix. Shorter values are zero-padded on the left to 32 bytes; longer
// values are rejected.
func ParseMasterSecret(s string) (MasterSecret, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return MasterSecret{}, fmt.Errorf("%w: master secret is not hex: %v", ErrConfiguration, err)
	}
	if len(b) > MasterSecretSize {
		return MasterSecret{}, fmt.Errorf("%w: master secret is %d bytes, max %d", ErrConfiguration, len(b), MasterSecretSize)
	}
	var m MasterSecret
	copy(m[MasterSecretSize-len(b):], b)
	return m, nil
}

// String returns the secret as 64 hex characters.
func (m MasterSecret) String() string {
	return hex.EncodeToString(m[:])
}

// IsZero reports whether the secret is all zero bytes.
func (m MasterSecret) IsZero() bool {
	return m == MasterSecret{}
}

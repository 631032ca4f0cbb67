package wallet

import (
	"encoding/binary"

	"github.com/Klingon-tech/webcash-wallet/pkg/crypto"
)

// derivationLabel is hashed into the domain-separation tag that prefixes
// every derivation.
const derivationLabel = "webcashwalletv1"

var derivationTag = crypto.Hash([]byte(derivationLabel))

// DeriveSecret returns the hex secret at index on chain:
//
//	SHA256(tag || tag || master || be64(chain) || be64(index))
//
// where tag = SHA256("webcashwalletv1").
func DeriveSecret(master MasterSecret, chain ChainID, index uint64) string {
	var suffix [16]byte
	binary.BigEndian.PutUint64(suffix[:8], chain.Code())
	binary.BigEndian.PutUint64(suffix[8:], index)
	return crypto.HashParts(derivationTag[:], derivationTag[:], master[:], suffix[:]).String()
}

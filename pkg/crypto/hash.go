// Package crypto provides the hashing primitives used by the webcash wallet.
package crypto

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
)

// DigestSize is the length of a SHA-256 digest in bytes.
const DigestSize = sha256.Size

// Digest is a SHA-256 output.
type Digest [DigestSize]byte

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Hash computes the SHA-256 digest of the input data.
func Hash(data []byte) Digest {
	return sha256.Sum256(data)
}

// HashParts computes the SHA-256 digest of the concatenation of parts
// without building an intermediate buffer.
func HashParts(parts ...[]byte) Digest {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out Digest
	h.Sum(out[:0])
	return out
}

// HashString returns the hex-encoded SHA-256 digest of the UTF-8 bytes of s.
// This is how a secret token value maps to its public hashed value.
func HashString(s string) string {
	return Hash([]byte(s)).String()
}

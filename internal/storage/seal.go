package storage

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealMagic prefixes every sealed wallet file.
var sealMagic = []byte("WCSEAL1\x00")

const (
	saltSize = 32
	// magic | salt | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext
	sealHeaderSize = 8 + saltSize + 4 + 4 + 1
)

var (
	// ErrBadPassphrase is returned when a sealed wallet cannot be opened.
	ErrBadPassphrase = errors.New("wrong passphrase or corrupted wallet")
	// ErrSealParams is returned for Argon2 cost parameters outside the accepted range.
	ErrSealParams = errors.New("seal parameters out of range")
)

// Upper bounds on Argon2 cost. Unseal reads the parameters from the file
// header, so they bound the work a crafted file can demand.
const (
	MaxSealMemory     = 1 << 20 // KiB (1 GiB)
	MaxSealIterations = 64
)

// SealParams holds the Argon2id cost parameters used to derive the sealing key.
type SealParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultSealParams returns the parameters used for new wallet files.
func DefaultSealParams() SealParams {
	return SealParams{Memory: 64 * 1024, Iterations: 3, Parallelism: 4}
}

func (p SealParams) validate() error {
	if p.Memory == 0 || p.Memory > MaxSealMemory ||
		p.Iterations == 0 || p.Iterations > MaxSealIterations ||
		p.Parallelism == 0 {
		return fmt.Errorf("%w: memory=%d KiB iterations=%d parallelism=%d",
			ErrSealParams, p.Memory, p.Iterations, p.Parallelism)
	}
	return nil
}

func (p SealParams) key(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

// IsSealed reports whether data carries the sealed wallet header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealMagic)
}

// Seal encrypts plaintext with Argon2id + XChaCha20-Poly1305. The header
// authenticates as additional data, so the cost parameters cannot be altered.
func Seal(plaintext, passphrase []byte, params SealParams) ([]byte, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := params.key(passphrase, salt)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, sealHeaderSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = binary.LittleEndian.AppendUint32(out, params.Memory)
	out = binary.LittleEndian.AppendUint32(out, params.Iterations)
	out = append(out, params.Parallelism)
	header := out
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, header), nil
}

// Unseal reverses Seal.
func Unseal(sealed, passphrase []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, errors.New("not a sealed wallet")
	}
	nonceSize := chacha20poly1305.NonceSizeX
	if min := sealHeaderSize + nonceSize + chacha20poly1305.Overhead; len(sealed) < min {
		return nil, fmt.Errorf("sealed wallet too short: %d bytes, need at least %d", len(sealed), min)
	}

	off := len(sealMagic)
	salt := sealed[off : off+saltSize]
	off += saltSize
	params := SealParams{
		Memory:      binary.LittleEndian.Uint32(sealed[off:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[off+4:]),
		Parallelism: sealed[off+8],
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	header := sealed[:sealHeaderSize]
	nonce := sealed[sealHeaderSize : sealHeaderSize+nonceSize]
	ciphertext := sealed[sealHeaderSize+nonceSize:]

	key := params.key(passphrase, salt)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plaintext, nil
}

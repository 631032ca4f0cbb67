// Package webcash implements the webcash token model: secret (spendable)
// tokens, their public (verifiable) counterparts, and the colon-delimited
// wire format "e<amount>:secret:<hex>" / "e<amount>:public:<hex>".
package webcash

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/webcash-wallet/pkg/crypto"
	"github.com/shopspring/decimal"
)

// Token parsing and validation errors.
var (
	ErrFormat    = errors.New("invalid webcash format")
	ErrPrecision = errors.New("amount precision should be at most 8 decimals")
)

// Kind discriminators used in the wire format.
const (
	KindSecret = "secret"
	KindPublic = "public"
)

// RandomSecretSize is the number of random bytes in a non-deterministic secret.
const RandomSecretSize = 32

// Token is either a SecretToken or a PublicToken.
type Token interface {
	// PublicHash returns the hashed value that identifies the token publicly.
	PublicHash() string
	// String returns the wire form of the token.
	String() string
}

// SecretToken is a spendable token: an amount and the bearer secret.
type SecretToken struct {
	amount decimal.Decimal
	secret string
}

// NewSecretToken creates a secret token, enforcing the amount precision.
func NewSecretToken(amount decimal.Decimal, secret string) (SecretToken, error) {
	if err := ValidateAmount(amount); err != nil {
		return SecretToken{}, err
	}
	return SecretToken{amount: amount, secret: secret}, nil
}

// NewRandomSecret creates a secret token with a fresh random secret. Wallets
// that derive their secrets deterministically must not use this.
func NewRandomSecret(amount decimal.Decimal) (SecretToken, error) {
	buf := make([]byte, RandomSecretSize)
	if _, err := rand.Read(buf); err != nil {
		return SecretToken{}, fmt.Errorf("generate secret: %w", err)
	}
	return NewSecretToken(amount, hex.EncodeToString(buf))
}

// Amount returns the token amount.
func (t SecretToken) Amount() decimal.Decimal { return t.amount }

// Secret returns the bearer secret value.
func (t SecretToken) Secret() string { return t.secret }

// WithAmount returns a copy of the token carrying a different amount.
func (t SecretToken) WithAmount(amount decimal.Decimal) (SecretToken, error) {
	return NewSecretToken(amount, t.secret)
}

// PublicHash returns Hash(secret) as lowercase hex.
func (t SecretToken) PublicHash() string {
	return crypto.HashString(t.secret)
}

// ToPublic returns the public counterpart of the token.
func (t SecretToken) ToPublic() PublicToken {
	return PublicToken{amount: decimal.NewNullDecimal(t.amount), hashedValue: t.PublicHash()}
}

// String returns "e<amount>:secret:<secret>".
func (t SecretToken) String() string {
	return "e" + FormatAmount(t.amount) + ":" + KindSecret + ":" + t.secret
}

// Equal reports whether other refers to the same token. Two secret tokens
// are equal when their secrets match; a secret and a public token are equal
// when hashing the secret reproduces the public hashed value.
func (t SecretToken) Equal(other Token) bool {
	switch o := other.(type) {
	case SecretToken:
		return t.secret == o.secret
	case *SecretToken:
		return o != nil && t.secret == o.secret
	case *PublicToken:
		return o != nil && t.PublicHash() == o.hashedValue
	case nil:
		return false
	default:
		return t.PublicHash() == other.PublicHash()
	}
}

// MarshalText encodes the token in wire form.
func (t SecretToken) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a secret token from wire form.
func (t *SecretToken) UnmarshalText(text []byte) error {
	parsed, err := ParseSecret(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// PublicToken is the non-spendable identity of a secret token.
type PublicToken struct {
	amount      decimal.NullDecimal
	hashedValue string
}

// NewPublicToken creates a public token. The amount may be unknown.
func NewPublicToken(amount decimal.NullDecimal, hashedValue string) (PublicToken, error) {
	if amount.Valid {
		if err := ValidateAmount(amount.Decimal); err != nil {
			return PublicToken{}, err
		}
	}
	return PublicToken{amount: amount, hashedValue: hashedValue}, nil
}

// Amount returns the token amount, which may be unknown.
func (t PublicToken) Amount() decimal.NullDecimal { return t.amount }

// PublicHash returns the hashed value.
func (t PublicToken) PublicHash() string { return t.hashedValue }

// String returns "e<amount>:public:<hash>", using "?" for an unknown amount.
func (t PublicToken) String() string {
	return "e" + FormatNullAmount(t.amount) + ":" + KindPublic + ":" + t.hashedValue
}

// Equal reports whether other has the same public identity.
func (t PublicToken) Equal(other Token) bool {
	switch o := other.(type) {
	case nil:
		return false
	case *PublicToken:
		return o != nil && t.hashedValue == o.hashedValue
	case *SecretToken:
		return o != nil && t.hashedValue == o.PublicHash()
	default:
		return t.hashedValue == other.PublicHash()
	}
}

// MarshalText encodes the token in wire form.
func (t PublicToken) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a public token from wire form.
func (t *PublicToken) UnmarshalText(text []byte) error {
	parsed, err := ParsePublic(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parse decodes a token of either kind from its wire form.
func Parse(s string) (Token, error) {
	if !strings.Contains(s, ":") {
		return nil, fmt.Errorf("%w: %q is not a webcash token", ErrFormat, s)
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[2] == "" {
		return nil, fmt.Errorf("%w: %q needs amount, kind and value", ErrFormat, s)
	}

	switch parts[1] {
	case KindSecret:
		amount, err := parseNullAmount(parts[0])
		if err != nil {
			return nil, err
		}
		if !amount.Valid {
			return nil, fmt.Errorf("%w: secret token %q has unknown amount", ErrFormat, s)
		}
		return NewSecretToken(amount.Decimal, parts[2])
	case KindPublic:
		amount, err := parseNullAmount(parts[0])
		if err != nil {
			return nil, err
		}
		return NewPublicToken(amount, parts[2])
	default:
		return nil, fmt.Errorf("%w: kind %q must be %s or %s", ErrFormat, parts[1], KindSecret, KindPublic)
	}
}

// ParseSecret decodes a secret token, rejecting public tokens.
func ParseSecret(s string) (SecretToken, error) {
	tok, err := Parse(s)
	if err != nil {
		return SecretToken{}, err
	}
	st, ok := tok.(SecretToken)
	if !ok {
		return SecretToken{}, fmt.Errorf("%w: %q is not a secret token", ErrFormat, s)
	}
	return st, nil
}

// ParsePublic decodes a public token, rejecting secret tokens.
func ParsePublic(s string) (PublicToken, error) {
	tok, err := Parse(s)
	if err != nil {
		return PublicToken{}, err
	}
	pt, ok := tok.(PublicToken)
	if !ok {
		return PublicToken{}, fmt.Errorf("%w: %q is not a public token", ErrFormat, s)
	}
	return pt, nil
}

package wallet

import (
	"fmt"
)

// ChainID names a derivation namespace. Each chain has its own depth
// counter.
type ChainID uint8

// Derivation chains. The numeric value is the chain code mixed into the
// derivation hash.
const (
	Receive ChainID = iota
	Pay
	Change
	Mining
)

// Chains lists every chain in recovery order.
var Chains = [...]ChainID{Receive, Pay, Change, Mining}

// Code returns the chain code used by DeriveSecret.
func (c ChainID) Code() uint64 { return uint64(c) }

func (c ChainID) String() string {
	switch c {
	case Receive:
		return "RECEIVE"
	case Pay:
		return "PAY"
	case Change:
		return "CHANGE"
	case Mining:
		return "MINING"
	default:
		return fmt.Sprintf("ChainID(%d)", uint8(c))
	}
}

// ParseChainID converts a chain name such as "RECEIVE" to a ChainID.
func ParseChainID(s string) (ChainID, error) {
	for _, c := range Chains {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown chain %q", ErrConfiguration, s)
}

// Depths holds the number of secrets consumed on each chain.
type Depths struct {
	Receive uint64 `json:"RECEIVE"`
	Pay     uint64 `json:"PAY"`
	Change  uint64 `json:"CHANGE"`
	Mining  uint64 `json:"MINING"`
}

// Get returns the depth of chain c.
func (d *Depths) Get(c ChainID) uint64 {
	if p := d.slot(c); p != nil {
		return *p
	}
	return 0
}

// Set updates the depth of chain c.
func (d *Depths) Set(c ChainID, depth uint64) {
	if p := d.slot(c); p != nil {
		*p = depth
	}
}

func (d *Depths) slot(c ChainID) *uint64 {
	switch c {
	case Receive:
		return &d.Receive
	case Pay:
		return &d.Pay
	case Change:
		return &d.Change
	case Mining:
		return &d.Mining
	default:
		return nil
	}
}

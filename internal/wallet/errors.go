package wallet

import (
	"errors"
	"fmt"
	"strings"
)

// Wallet errors.
var (
	ErrConsent           = errors.New("terms of service have not been accepted")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConfiguration     = errors.New("invalid wallet configuration")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrNoLedger          = errors.New("no ledger configured")
	ErrNoWallet          = errors.New("no wallet stored")
)

// TransferError reports a failed replace call. The minted tokens listed in
// Pending were recorded before the call and stay in the wallet's pending
// set; their fate on the server is unknown.
type TransferError struct {
	Op      string
	Pending []string
	Err     error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed, %d token(s) left pending [%s]: %v",
		e.Op, len(e.Pending), strings.Join(e.Pending, " "), e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

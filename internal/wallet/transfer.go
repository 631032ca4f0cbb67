package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

// Insert takes ownership of token by replacing it with a secret derived on
// the RECEIVE chain. It returns the new token in wire form.
//
// The new token is recorded as pending and saved before the replace call.
// If the call fails the returned *TransferError lists it and it stays
// pending.
func (w *Wallet) Insert(ctx context.Context, token webcash.SecretToken, memo string) (string, error) {
	if err := w.checkTransfer(); err != nil {
		return "", err
	}

	minted, err := webcash.NewSecretToken(token.Amount(), w.NextSecret(Receive))
	if err != nil {
		return "", err
	}

	req := ledger.ReplaceRequest{
		Webcashes:    []string{token.String()},
		NewWebcashes: []string{minted.String()},
		Legalese:     w.legalese,
	}
	if err := w.replace(ctx, "insert", req, minted); err != nil {
		return "", err
	}

	w.holdings = append(w.holdings, minted)
	w.history = append(w.history, InsertEntry{
		Amount:     minted.Amount(),
		Webcash:    token.String(),
		NewWebcash: minted.String(),
		Memo:       memo,
		Timestamp:  w.clock.Now(),
	})

	klog.Wallet.Info().
		Str("amount", webcash.FormatAmount(minted.Amount())).
		Str("hash", minted.PublicHash()).
		Msg("Inserted webcash")

	if err := w.Save(ctx); err != nil {
		return minted.String(), err
	}
	return minted.String(), nil
}

// Pay spends held tokens to create a payment token of exactly amount,
// derived on the PAY chain. Any excess returns to the wallet as a token on
// the CHANGE chain. It returns the payment token in wire form.
//
// Failure semantics match Insert.
func (w *Wallet) Pay(ctx context.Context, amount decimal.Decimal, memo string) (string, error) {
	if err := w.checkTransfer(); err != nil {
		return "", err
	}
	if err := webcash.ValidateAmount(amount); err != nil {
		return "", err
	}

	sel, err := SelectCoins(w.holdings, amount)
	if err != nil {
		return "", err
	}

	var change *webcash.SecretToken
	var outputs []string
	if sel.Change.IsPositive() {
		c, err := webcash.NewSecretToken(sel.Change, w.NextSecret(Change))
		if err != nil {
			return "", err
		}
		change = &c
		outputs = append(outputs, c.String())
	}
	payment, err := webcash.NewSecretToken(amount, w.NextSecret(Pay))
	if err != nil {
		return "", err
	}
	outputs = append(outputs, payment.String())

	inputs := make([]string, len(sel.Inputs))
	for i, t := range sel.Inputs {
		inputs[i] = t.String()
	}

	minted := []webcash.SecretToken{payment}
	if change != nil {
		minted = append(minted, *change)
	}

	req := ledger.ReplaceRequest{
		Webcashes:    inputs,
		NewWebcashes: outputs,
		Legalese:     w.legalese,
	}
	if err := w.replace(ctx, "pay", req, minted...); err != nil {
		return "", err
	}

	w.holdings = removeTokens(w.holdings, sel.Inputs)
	now := w.clock.Now()
	if change != nil {
		w.holdings = append(w.holdings, *change)
		w.history = append(w.history, ChangeEntry{
			Amount:    change.Amount(),
			Webcash:   change.String(),
			Timestamp: now,
		})
	}
	w.history = append(w.history, PaymentEntry{
		Amount:    payment.Amount(),
		Webcash:   payment.String(),
		Memo:      memo,
		Timestamp: now,
	})

	klog.Wallet.Info().
		Str("amount", webcash.FormatAmount(amount)).
		Int("inputs", len(sel.Inputs)).
		Str("change", webcash.FormatAmount(sel.Change)).
		Msg("Paid webcash")

	if err := w.Save(ctx); err != nil {
		return payment.String(), err
	}
	return payment.String(), nil
}

func (w *Wallet) checkTransfer() error {
	if !w.TermsAccepted() {
		return ErrConsent
	}
	if w.ledger == nil {
		return ErrNoLedger
	}
	return nil
}

// replace records minted as pending, saves, and calls the ledger. On
// success minted leaves the pending set again.
func (w *Wallet) replace(ctx context.Context, op string, req ledger.ReplaceRequest, minted ...webcash.SecretToken) error {
	w.pending = append(w.pending, minted...)

	pending := make([]string, len(minted))
	for i, t := range minted {
		pending[i] = t.String()
	}
	if err := w.Save(ctx); err != nil {
		return &TransferError{Op: op, Pending: pending, Err: err}
	}

	if err := w.ledger.Replace(ctx, req); err != nil {
		klog.Wallet.Warn().Err(err).Str("op", op).Int("pending", len(minted)).
			Msg("Replace failed, minted webcash left pending")
		return &TransferError{Op: op, Pending: pending, Err: fmt.Errorf("replace: %w", err)}
	}

	w.pending = removeTokens(w.pending, minted)
	return nil
}

// removeTokens returns tokens without any entry whose secret matches one
// in drop.
func removeTokens(tokens, drop []webcash.SecretToken) []webcash.SecretToken {
	skip := make(map[string]struct{}, len(drop))
	for _, t := range drop {
		skip[t.Secret()] = struct{}{}
	}
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := skip[t.Secret()]; !ok {
			out = append(out, t)
		}
	}
	return out
}

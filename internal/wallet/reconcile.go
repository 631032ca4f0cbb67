package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

// CollapseDuplicates keeps the first held token for each public hash and
// moves every later copy to pending. It returns the surviving holdings
// indexed by public hash.
func (w *Wallet) CollapseDuplicates() map[string]webcash.SecretToken {
	index := make(map[string]webcash.SecretToken, len(w.holdings))
	kept := w.holdings[:0:0]
	for _, t := range w.holdings {
		hash := t.PublicHash()
		if _, dup := index[hash]; dup {
			klog.Wallet.Warn().Str("hash", hash).Msg("Duplicate webcash detected, moving copy to pending")
			w.pending = append(w.pending, t)
			continue
		}
		index[hash] = t
		kept = append(kept, t)
	}
	w.holdings = kept
	return index
}

// ApplyHealthResults updates holdings from a health check response. Keys of
// results are public token strings; index maps public hashes to the held
// tokens that were queried.
//
//   - spent false: the server's amount replaces the held amount if they
//     differ. The corrected token moves to the end of holdings.
//   - spent true or null: the token leaves holdings for pending.
//
// Results are validated before any change is made, so a protocol error
// leaves the wallet untouched.
func (w *Wallet) ApplyHealthResults(results map[string]ledger.Status, index map[string]webcash.SecretToken) error {
	_, err := w.applyHealthResults(results, index)
	return err
}

// applyHealthResults reports whether holdings changed.
func (w *Wallet) applyHealthResults(results map[string]ledger.Status, index map[string]webcash.SecretToken) (bool, error) {
	type update struct {
		held   webcash.SecretToken
		status ledger.Status
	}

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]update, 0, len(keys))
	for _, key := range keys {
		pub, err := webcash.ParsePublic(key)
		if err != nil {
			return false, fmt.Errorf("%w: result key %q: %v", ledger.ErrProtocol, key, err)
		}
		held, ok := index[pub.PublicHash()]
		if !ok {
			return false, fmt.Errorf("%w: result for unknown token %s", ledger.ErrProtocol, key)
		}
		status := results[key]
		switch status.Spent {
		case ledger.SpentFalse:
			if !status.Amount.Valid {
				return false, fmt.Errorf("%w: unspent token %s has no amount", ledger.ErrProtocol, key)
			}
			if err := webcash.ValidateAmount(status.Amount.Decimal); err != nil {
				return false, fmt.Errorf("%w: token %s: %v", ledger.ErrProtocol, key, err)
			}
		case ledger.SpentTrue, ledger.SpentUnknown:
		default:
			return false, fmt.Errorf("%w: invalid webcash status %s for %s", ledger.ErrProtocol, status.Spent, key)
		}
		updates = append(updates, update{held: held, status: status})
	}

	changed := false
	for _, u := range updates {
		pos := w.holdingIndex(u.held)
		if pos < 0 {
			continue
		}
		if u.status.Spent == ledger.SpentFalse {
			server := u.status.Amount.Decimal
			if server.Equal(u.held.Amount()) {
				continue
			}
			corrected, err := u.held.WithAmount(server)
			if err != nil {
				return changed, err
			}
			klog.Wallet.Warn().
				Str("hash", u.held.PublicHash()).
				Str("local", webcash.FormatAmount(u.held.Amount())).
				Str("server", webcash.FormatAmount(server)).
				Msg("Wallet was mistaken about webcash amount, updating")
			w.holdings = append(append(w.holdings[:pos:pos], w.holdings[pos+1:]...), corrected)
			changed = true
			continue
		}

		klog.Wallet.Warn().
			Str("hash", u.held.PublicHash()).
			Str("spent", u.status.Spent.String()).
			Msg("Removing invalid webcash")
		w.holdings = append(w.holdings[:pos:pos], w.holdings[pos+1:]...)
		w.pending = append(w.pending, u.held)
		changed = true
	}
	return changed, nil
}

// holdingIndex returns the position of the held token with t's secret, or -1.
func (w *Wallet) holdingIndex(t webcash.SecretToken) int {
	for i, h := range w.holdings {
		if h.Equal(t) {
			return i
		}
	}
	return -1
}

// Check health checks every held token and applies the results. Duplicates
// are collapsed first. Tokens are sent in batches, one request at a time;
// the first failing batch aborts the check.
func (w *Wallet) Check(ctx context.Context) error {
	if w.ledger == nil {
		return ErrNoLedger
	}

	pendingBefore := len(w.pending)
	index := w.CollapseDuplicates()
	if len(w.pending) != pendingBefore {
		if err := w.Save(ctx); err != nil {
			return err
		}
	}

	changed := false
	tokens := cloneTokens(w.holdings)
	for start := 0; start < len(tokens); start += w.batchSize {
		end := start + w.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := make([]string, 0, end-start)
		for _, t := range tokens[start:end] {
			batch = append(batch, t.String())
		}

		klog.Wallet.Debug().Int("batch", start/w.batchSize).Int("tokens", len(batch)).Msg("Checking webcash")
		results, err := w.ledger.HealthCheck(ctx, batch)
		if err != nil {
			return w.saveAfterFailure(ctx, changed, fmt.Errorf("health check: %w", err))
		}
		batchChanged, err := w.applyHealthResults(results, index)
		if err != nil {
			return w.saveAfterFailure(ctx, changed, err)
		}
		changed = changed || batchChanged
	}
	if !changed {
		return nil
	}
	return w.Save(ctx)
}

// saveAfterFailure persists corrections made by earlier batches before
// reporting err.
func (w *Wallet) saveAfterFailure(ctx context.Context, changed bool, err error) error {
	if !changed {
		return err
	}
	if serr := w.Save(ctx); serr != nil {
		return errors.Join(err, serr)
	}
	return err
}

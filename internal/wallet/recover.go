package wallet

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

// probeAmount is the placeholder amount on recovery probes. The server
// keys on the hash and reports the real amount.
var probeAmount = decimal.NewFromInt(1)

// ChainReport summarizes the scan of one chain.
type ChainReport struct {
	Chain         ChainID
	Rounds        int
	Found         bool   // Some index on the chain was ever used.
	LastUsed      uint64 // Highest used index; meaningful when Found.
	PreviousDepth uint64
	Depth         uint64
	DepthAhead    bool // The stored depth was more than one past LastUsed.
	Recovered     []webcash.SecretToken
}

// RecoveryReport summarizes a Recover run.
type RecoveryReport struct {
	Chains    []ChainReport
	Recovered decimal.Decimal
}

// Recover rediscovers tokens derived from the master secret. It checks the
// current holdings, then scans every chain in gapLimit-sized windows until
// a window shows no usage and the window start has passed the chain's
// stored depth. Unspent tokens found on any chain but PAY are added to
// holdings, depths are raised past the highest used index, and the wallet
// is saved.
func (w *Wallet) Recover(ctx context.Context, gapLimit int) (*RecoveryReport, error) {
	if gapLimit <= 0 {
		gapLimit = w.gapLimit
	}
	defer klog.Timed(klog.Recovery, "recover")()

	if err := w.Check(ctx); err != nil {
		return nil, err
	}

	report := &RecoveryReport{Recovered: decimal.Zero}
	for _, chain := range Chains {
		cr, err := w.ScanChain(ctx, chain, gapLimit)
		if err != nil {
			return nil, err
		}
		report.Chains = append(report.Chains, *cr)
		report.Recovered = report.Recovered.Add(sumAmounts(cr.Recovered))
	}

	if err := w.Save(ctx); err != nil {
		return nil, err
	}
	return report, nil
}

// ScanChain runs the gap-limit scan over one chain. It adopts recovered
// tokens and corrects the chain depth but does not save.
func (w *Wallet) ScanChain(ctx context.Context, chain ChainID, gapLimit int) (*ChainReport, error) {
	if w.ledger == nil {
		return nil, ErrNoLedger
	}
	if gapLimit <= 0 {
		return nil, fmt.Errorf("%w: gap limit must be positive", ErrConfiguration)
	}

	reported := w.depths.Get(chain)
	cr := &ChainReport{Chain: chain, PreviousDepth: reported}
	logger := klog.Recovery.With().Str("chain", chain.String()).Logger()

	var current uint64
	for {
		logger.Debug().Uint64("from", current).Int("gap", gapLimit).Int("round", cr.Rounds).Msg("Scanning secrets")

		probes := make([]string, 0, gapLimit)
		candidates := make(map[string]webcash.SecretToken, gapLimit)
		depthOf := make(map[string]uint64, gapLimit)
		for i := uint64(0); i < uint64(gapLimit); i++ {
			index := current + i
			swc, err := webcash.NewSecretToken(probeAmount, w.PeekSecret(chain, index))
			if err != nil {
				return nil, err
			}
			pub := swc.ToPublic()
			candidates[pub.PublicHash()] = swc
			depthOf[pub.PublicHash()] = index
			probes = append(probes, pub.String())
		}

		results, err := w.ledger.HealthCheck(ctx, probes)
		if err != nil {
			return nil, fmt.Errorf("health check: %w", err)
		}
		cr.Rounds++

		hits, err := matchProbes(results, candidates, depthOf)
		if err != nil {
			return nil, err
		}

		used := false
		for _, hit := range hits {
			if !hit.status.Used() {
				continue
			}
			used = true
			if !cr.Found || hit.index > cr.LastUsed {
				cr.LastUsed = hit.index
			}
			cr.Found = true

			if hit.status.Spent != ledger.SpentFalse || !hit.status.Amount.Valid {
				continue
			}
			found, err := hit.token.WithAmount(hit.status.Amount.Decimal)
			if err != nil {
				return nil, fmt.Errorf("%w: token at index %d: %v", ledger.ErrProtocol, hit.index, err)
			}
			if chain == Pay || w.holdingIndex(found) >= 0 {
				logger.Debug().Str("amount", webcash.FormatAmount(found.Amount())).Msg("Found known webcash")
				continue
			}
			logger.Info().Str("amount", webcash.FormatAmount(found.Amount())).Msg("Recovered webcash")
			w.holdings = append(w.holdings, found)
			cr.Recovered = append(cr.Recovered, found)
		}

		if !used && current >= reported {
			break
		}
		current += uint64(gapLimit)
	}

	if reported > cr.LastUsed+1 {
		cr.DepthAhead = true
		logger.Warn().
			Uint64("depth", reported).
			Uint64("last_used", cr.LastUsed).
			Msg("Stored depth is ahead of any used secret")
	}
	if cr.Found && reported <= cr.LastUsed {
		w.depths.Set(chain, cr.LastUsed+1)
		logger.Info().Uint64("from", reported).Uint64("to", cr.LastUsed+1).Msg("Raised chain depth")
	}
	cr.Depth = w.depths.Get(chain)
	return cr, nil
}

type probeHit struct {
	index  uint64
	token  webcash.SecretToken
	status ledger.Status
}

// matchProbes pairs health check results with the probed candidates, in
// index order.
func matchProbes(results map[string]ledger.Status, candidates map[string]webcash.SecretToken, depthOf map[string]uint64) ([]probeHit, error) {
	hits := make([]probeHit, 0, len(results))
	for key, status := range results {
		pub, err := webcash.ParsePublic(key)
		if err != nil {
			return nil, fmt.Errorf("%w: result key %q: %v", ledger.ErrProtocol, key, err)
		}
		token, ok := candidates[pub.PublicHash()]
		if !ok {
			return nil, fmt.Errorf("%w: result for unknown token %s", ledger.ErrProtocol, key)
		}
		switch status.Spent {
		case ledger.SpentFalse, ledger.SpentTrue, ledger.SpentUnknown:
		default:
			return nil, fmt.Errorf("%w: invalid webcash status %s for %s", ledger.ErrProtocol, status.Spent, key)
		}
		hits = append(hits, probeHit{index: depthOf[pub.PublicHash()], token: token, status: status})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })
	return hits, nil
}

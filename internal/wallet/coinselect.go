package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

// CoinSelection holds the result of coin selection.
type CoinSelection struct {
	Inputs []webcash.SecretToken // Selected tokens to spend.
	Total  decimal.Decimal       // Sum of selected input amounts.
	Change decimal.Decimal       // Change = Total - target.
}

// SelectCoins chooses tokens to fund a payment of target. It makes two
// first-fit passes over tokens in their given order:
//  1. Single token: the first token whose amount covers the target.
//  2. Accumulation: the shortest prefix whose sum covers the target.
//
// The result depends on the order of tokens. Callers that want a different
// selection must sort first.
func SelectCoins(tokens []webcash.SecretToken, target decimal.Decimal) (*CoinSelection, error) {
	if !target.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, target)
	}

	for _, t := range tokens {
		if t.Amount().GreaterThanOrEqual(target) {
			return &CoinSelection{
				Inputs: []webcash.SecretToken{t},
				Total:  t.Amount(),
				Change: t.Amount().Sub(target),
			}, nil
		}
	}

	var selected []webcash.SecretToken
	total := decimal.Zero
	for _, t := range tokens {
		selected = append(selected, t)
		total = total.Add(t.Amount())
		if total.GreaterThanOrEqual(target) {
			return &CoinSelection{
				Inputs: selected,
				Total:  total,
				Change: total.Sub(target),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, total, target)
}

// sumAmounts returns the total amount of tokens.
func sumAmounts(tokens []webcash.SecretToken) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tokens {
		total = total.Add(t.Amount())
	}
	return total
}

package wallet

import "github.com/shopspring/decimal"

// Balance splits wallet value into held tokens and tokens awaiting
// confirmation.
type Balance struct {
	Confirmed   decimal.Decimal
	Unconfirmed decimal.Decimal
}

// Total returns Confirmed + Unconfirmed.
func (b Balance) Total() decimal.Decimal {
	return b.Confirmed.Add(b.Unconfirmed)
}

// Balance returns the sum of held tokens. It makes no network calls.
func (w *Wallet) Balance() decimal.Decimal {
	return sumAmounts(w.holdings)
}

// Summary returns held and pending sums.
func (w *Wallet) Summary() Balance {
	return Balance{
		Confirmed:   sumAmounts(w.holdings),
		Unconfirmed: sumAmounts(w.pending),
	}
}

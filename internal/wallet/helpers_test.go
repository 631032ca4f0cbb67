package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/webcash-wallet/internal/ledger"
	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

const testMaster = "6fc3d1b067646ea749e4001e05c757c491b351424ae998339d6341d7a18e12d4"

var testStart = time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

// serverToken is the fake ledger's record of one token.
type serverToken struct {
	amount decimal.Decimal
	spent  bool
}

// fakeLedger is an in-memory webcash server keyed by public hash.
type fakeLedger struct {
	tokens map[string]*serverToken

	replaceErr  error
	healthErrAt int // Fail the n-th health check (1-based); 0 never fails.
	override    map[string]ledger.Status

	replaces     []ledger.ReplaceRequest
	healthChecks [][]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{tokens: make(map[string]*serverToken)}
}

// issue registers an unspent token on the server.
func (f *fakeLedger) issue(t webcash.SecretToken) {
	f.tokens[t.PublicHash()] = &serverToken{amount: t.Amount()}
}

func (f *fakeLedger) Replace(_ context.Context, req ledger.ReplaceRequest) error {
	f.replaces = append(f.replaces, req)
	if f.replaceErr != nil {
		return f.replaceErr
	}
	if !req.Legalese.Terms {
		return &ledger.StatusError{StatusCode: 500, Body: "terms not accepted"}
	}

	in, out := decimal.Zero, decimal.Zero
	for _, s := range req.Webcashes {
		t, err := webcash.ParseSecret(s)
		if err != nil {
			return err
		}
		rec, ok := f.tokens[t.PublicHash()]
		if !ok || rec.spent || !rec.amount.Equal(t.Amount()) {
			return &ledger.StatusError{StatusCode: 500, Body: "can't replace " + s}
		}
		in = in.Add(t.Amount())
	}
	for _, s := range req.NewWebcashes {
		t, err := webcash.ParseSecret(s)
		if err != nil {
			return err
		}
		out = out.Add(t.Amount())
	}
	if !in.Equal(out) {
		return &ledger.StatusError{StatusCode: 500, Body: fmt.Sprintf("in %s != out %s", in, out)}
	}

	for _, s := range req.Webcashes {
		t, _ := webcash.ParseSecret(s)
		f.tokens[t.PublicHash()].spent = true
	}
	for _, s := range req.NewWebcashes {
		t, _ := webcash.ParseSecret(s)
		f.issue(t)
	}
	return nil
}

func (f *fakeLedger) HealthCheck(_ context.Context, tokens []string) (map[string]ledger.Status, error) {
	f.healthChecks = append(f.healthChecks, tokens)
	if f.healthErrAt > 0 && len(f.healthChecks) == f.healthErrAt {
		return nil, &ledger.StatusError{StatusCode: 503, Body: "unavailable"}
	}

	results := make(map[string]ledger.Status, len(tokens))
	for _, s := range tokens {
		tok, err := webcash.Parse(s)
		if err != nil {
			return nil, err
		}
		hash := tok.PublicHash()
		key := "e1:public:" + hash
		if st, ok := f.override[hash]; ok {
			results[key] = st
			continue
		}
		rec, ok := f.tokens[hash]
		switch {
		case !ok:
			results[key] = ledger.Status{Spent: ledger.SpentUnknown}
		case rec.spent:
			results[key] = ledger.Status{Spent: ledger.SpentTrue}
		default:
			results[key] = ledger.Status{Spent: ledger.SpentFalse, Amount: decimal.NewNullDecimal(rec.amount)}
		}
	}
	return results, nil
}

// memStore is a Store holding one snapshot.
type memStore struct {
	contents *Contents
	saves    int
	err      error
}

func (s *memStore) Load(context.Context) (*Contents, error) {
	if s.contents == nil {
		return nil, ErrNoWallet
	}
	return s.contents, nil
}

func (s *memStore) Save(_ context.Context, c *Contents) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.contents = c
	return nil
}

type testEnv struct {
	wallet *Wallet
	ledger *fakeLedger
	store  *memStore
	clock  *clock.TestClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Discard()

	master, err := ParseMasterSecret(testMaster)
	if err != nil {
		t.Fatalf("ParseMasterSecret() error: %v", err)
	}
	env := &testEnv{
		ledger: newFakeLedger(),
		store:  &memStore{},
		clock:  clock.NewTestClock(testStart),
	}
	env.wallet = NewFromMaster(Config{
		Ledger: env.ledger,
		Store:  env.store,
		Clock:  env.clock,
	}, master)
	env.wallet.AcceptTerms()
	return env
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func token(t *testing.T, amount, secret string) webcash.SecretToken {
	t.Helper()
	tok, err := webcash.NewSecretToken(dec(amount), secret)
	if err != nil {
		t.Fatalf("NewSecretToken(%s) error: %v", amount, err)
	}
	return tok
}

// fund inserts tokens of the given amounts through the fake ledger.
func fund(t *testing.T, env *testEnv, amounts ...string) {
	t.Helper()
	for _, a := range amounts {
		in, err := webcash.NewRandomSecret(dec(a))
		if err != nil {
			t.Fatalf("NewRandomSecret() error: %v", err)
		}
		env.ledger.issue(in)
		if _, err := env.wallet.Insert(context.Background(), in, ""); err != nil {
			t.Fatalf("Insert(%s) error: %v", a, err)
		}
	}
}

func amountsOf(tokens []webcash.SecretToken) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Amount().String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var errBoom = errors.New("boom")

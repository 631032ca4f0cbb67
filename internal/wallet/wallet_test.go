package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Klingon-tech/webcash-wallet/pkg/webcash"
)

func TestNew_RandomMaster(t *testing.T) {
	a, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	b, _ := New(Config{})
	if a.MasterSecret() == b.MasterSecret() {
		t.Error("new wallets should have distinct master secrets")
	}
	if a.TermsAccepted() {
		t.Error("terms should start unaccepted")
	}
	if !a.Balance().IsZero() {
		t.Errorf("balance = %s, want 0", a.Balance())
	}
}

func TestWallet_WorksWithoutStore(t *testing.T) {
	env := newTestEnv(t)
	w := NewFromMaster(Config{Ledger: env.ledger}, env.wallet.MasterSecret())
	w.AcceptTerms()

	in := token(t, "2", "aa")
	env.ledger.issue(in)
	if _, err := w.Insert(context.Background(), in, ""); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if err := w.Save(context.Background()); err != nil {
		t.Errorf("Save() without store error: %v", err)
	}
}

func TestContents_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet
	fund(t, env, "10", "0.5")
	if _, err := w.Pay(context.Background(), dec("3"), "rent"); err != nil {
		t.Fatalf("Pay() error: %v", err)
	}

	data, err := json.Marshal(w.Contents())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal(raw) error: %v", err)
	}
	for _, key := range []string{"version", "legalese", "webcash", "unconfirmed", "log", "master_secret", "walletdepths"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("contents missing %q", key)
		}
	}
	if string(raw["walletdepths"]) != `{"RECEIVE":2,"PAY":1,"CHANGE":1,"MINING":0}` {
		t.Errorf("walletdepths = %s", raw["walletdepths"])
	}
	if string(raw["legalese"]) != `{"terms":true}` {
		t.Errorf("legalese = %s", raw["legalese"])
	}

	var c Contents
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	restored, err := FromContents(Config{}, &c)
	if err != nil {
		t.Fatalf("FromContents() error: %v", err)
	}
	if restored.MasterSecret() != w.MasterSecret() {
		t.Error("master secret not restored")
	}
	if restored.Depths() != w.Depths() {
		t.Errorf("depths = %+v, want %+v", restored.Depths(), w.Depths())
	}
	if !restored.Balance().Equal(w.Balance()) {
		t.Errorf("balance = %s, want %s", restored.Balance(), w.Balance())
	}
	if len(restored.History()) != len(w.History()) {
		t.Errorf("history = %d, want %d", len(restored.History()), len(w.History()))
	}
	if !restored.TermsAccepted() {
		t.Error("terms acceptance not restored")
	}
}

func TestFromContents_OriginalFormat(t *testing.T) {
	data := `{
		"version": "1.0",
		"legalese": {"terms": null},
		"webcash": ["e15:secret:` + secret15 + `"],
		"unconfirmed": [],
		"log": [],
		"master_secret": "` + testMaster + `",
		"walletdepths": {"RECEIVE": 3, "PAY": 1, "CHANGE": 0, "MINING": 0}
	}`

	var c Contents
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	w, err := FromContents(Config{}, &c)
	if err != nil {
		t.Fatalf("FromContents() error: %v", err)
	}
	if w.TermsAccepted() {
		t.Error("null terms should read as not accepted")
	}
	if w.Depth(Receive) != 3 || w.Depth(Pay) != 1 {
		t.Errorf("depths = %+v", w.Depths())
	}
	if !w.Balance().Equal(dec("15")) {
		t.Errorf("balance = %s, want 15", w.Balance())
	}
}

func TestFromContents_GeneratesMissingMaster(t *testing.T) {
	w, err := FromContents(Config{}, &Contents{})
	if err != nil {
		t.Fatalf("FromContents() error: %v", err)
	}
	if w.MasterSecret().IsZero() {
		t.Error("missing master secret should be generated")
	}
	if w.Contents().Version != Version {
		t.Errorf("version = %s, want %s", w.Contents().Version, Version)
	}
}

func TestFromContents_OversizedMaster(t *testing.T) {
	_, err := FromContents(Config{}, &Contents{MasterSecret: testMaster + "ff"})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("FromContents() = %v, want ErrConfiguration", err)
	}
}

func TestOpen_CreatesAndReloads(t *testing.T) {
	store := &memStore{}
	w, err := Open(context.Background(), Config{Store: store})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1 for a new wallet", store.saves)
	}

	again, err := Open(context.Background(), Config{Store: store})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if again.MasterSecret() != w.MasterSecret() {
		t.Error("reopened wallet has a different master secret")
	}
}

func TestOpen_LoadError(t *testing.T) {
	store := &failingStore{err: errBoom}
	if _, err := Open(context.Background(), Config{Store: store}); !errors.Is(err, errBoom) {
		t.Errorf("Open() = %v, want boom", err)
	}
}

type failingStore struct{ err error }

func (s *failingStore) Load(context.Context) (*Contents, error) { return nil, s.err }
func (s *failingStore) Save(context.Context, *Contents) error   { return s.err }

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet
	w.holdings = []webcash.SecretToken{token(t, "1.5", "aa"), token(t, "2", "bb")}
	w.pending = []webcash.SecretToken{token(t, "0.25", "cc")}

	sum := w.Summary()
	if !sum.Confirmed.Equal(dec("3.5")) || !sum.Unconfirmed.Equal(dec("0.25")) {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.Total().Equal(dec("3.75")) {
		t.Errorf("total = %s, want 3.75", sum.Total())
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet
	w.holdings = []webcash.SecretToken{token(t, "1", "aa")}

	h := w.Holdings()
	h[0] = token(t, "99", "bb")
	if !w.Balance().Equal(dec("1")) {
		t.Error("Holdings() exposed internal slice")
	}
}

package wallet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType discriminates history entries.
type EntryType string

// History entry types.
const (
	EntryInsert  EntryType = "insert"
	EntryPayment EntryType = "payment"
	EntryChange  EntryType = "change"
)

// LogEntry is one record of the wallet's append-only history. It is one of
// InsertEntry, PaymentEntry or ChangeEntry.
type LogEntry interface {
	Type() EntryType
	Time() time.Time
}

// InsertEntry records a received token replaced by a wallet-derived one.
type InsertEntry struct {
	Amount     decimal.Decimal
	Webcash    string // Token as received.
	NewWebcash string // Replacement owned by the wallet.
	Memo       string
	Timestamp  time.Time
}

// PaymentEntry records an outgoing payment token.
type PaymentEntry struct {
	Amount    decimal.Decimal
	Webcash   string
	Memo      string
	Timestamp time.Time
}

// ChangeEntry records change returned to the wallet by a payment.
type ChangeEntry struct {
	Amount    decimal.Decimal
	Webcash   string
	Timestamp time.Time
}

func (e InsertEntry) Type() EntryType  { return EntryInsert }
func (e PaymentEntry) Type() EntryType { return EntryPayment }
func (e ChangeEntry) Type() EntryType  { return EntryChange }

func (e InsertEntry) Time() time.Time  { return e.Timestamp }
func (e PaymentEntry) Time() time.Time { return e.Timestamp }
func (e ChangeEntry) Time() time.Time  { return e.Timestamp }

// History is the wallet log. It encodes as a JSON array of objects with a
// "type" field and a unix millisecond "timestamp" string.
type History []LogEntry

type logRecord struct {
	Type       EntryType `json:"type"`
	Amount     string    `json:"amount"`
	Webcash    string    `json:"webcash"`
	NewWebcash *string   `json:"new_webcash,omitempty"`
	Memo       *string   `json:"memo,omitempty"`
	Timestamp  string    `json:"timestamp"`
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return time.UnixMilli(ms), nil
}

// MarshalJSON implements json.Marshaler.
func (h History) MarshalJSON() ([]byte, error) {
	records := make([]logRecord, 0, len(h))
	for _, entry := range h {
		var rec logRecord
		switch e := entry.(type) {
		case InsertEntry:
			rec = logRecord{Amount: e.Amount.String(), Webcash: e.Webcash,
				NewWebcash: &e.NewWebcash, Memo: &e.Memo}
		case PaymentEntry:
			rec = logRecord{Amount: e.Amount.String(), Webcash: e.Webcash, Memo: &e.Memo}
		case ChangeEntry:
			rec = logRecord{Amount: e.Amount.String(), Webcash: e.Webcash}
		default:
			return nil, fmt.Errorf("unknown log entry %T", entry)
		}
		rec.Type = entry.Type()
		rec.Timestamp = formatMillis(entry.Time())
		records = append(records, rec)
	}
	return json.Marshal(records)
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *History) UnmarshalJSON(data []byte) error {
	var records []logRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	out := make(History, 0, len(records))
	for i, rec := range records {
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return fmt.Errorf("log entry %d: invalid amount %q: %w", i, rec.Amount, err)
		}
		ts, err := parseMillis(rec.Timestamp)
		if err != nil {
			return fmt.Errorf("log entry %d: %w", i, err)
		}
		switch rec.Type {
		case EntryInsert:
			out = append(out, InsertEntry{Amount: amount, Webcash: rec.Webcash,
				NewWebcash: deref(rec.NewWebcash), Memo: deref(rec.Memo), Timestamp: ts})
		case EntryPayment:
			out = append(out, PaymentEntry{Amount: amount, Webcash: rec.Webcash,
				Memo: deref(rec.Memo), Timestamp: ts})
		case EntryChange:
			out = append(out, ChangeEntry{Amount: amount, Webcash: rec.Webcash, Timestamp: ts})
		default:
			return fmt.Errorf("log entry %d: unknown type %q", i, rec.Type)
		}
	}
	*h = out
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

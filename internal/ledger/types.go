package ledger

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Legalese records which legal agreements the wallet owner accepted. It is
// sent with every replace request.
type Legalese struct {
	Terms bool `json:"terms"`
}

// ReplaceRequest is the body of a replace call.
type ReplaceRequest struct {
	Webcashes    []string `json:"webcashes"`
	NewWebcashes []string `json:"new_webcashes"`
	Legalese     Legalese `json:"legalese"`
}

// SpentState is the tri-state "spent" field of a health check result.
type SpentState int

const (
	// SpentInvalid is the zero value: the server sent no usable state.
	SpentInvalid SpentState = iota
	// SpentFalse means the token exists and is unspent.
	SpentFalse
	// SpentTrue means the token was spent.
	SpentTrue
	// SpentUnknown (null) means the server never saw the token.
	SpentUnknown
)

func (s SpentState) String() string {
	switch s {
	case SpentFalse:
		return "false"
	case SpentTrue:
		return "true"
	case SpentUnknown:
		return "null"
	default:
		return "invalid"
	}
}

// MarshalJSON encodes the state as false, true or null.
func (s SpentState) MarshalJSON() ([]byte, error) {
	switch s {
	case SpentFalse, SpentTrue, SpentUnknown:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("%w: cannot encode spent state %d", ErrProtocol, int(s))
	}
}

// UnmarshalJSON accepts only false, true or null.
func (s *SpentState) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "false":
		*s = SpentFalse
	case "true":
		*s = SpentTrue
	case "null":
		*s = SpentUnknown
	default:
		return fmt.Errorf("%w: invalid spent value %s", ErrProtocol, data)
	}
	return nil
}

// Status is the server's view of one token.
type Status struct {
	Spent  SpentState          `json:"spent"`
	Amount decimal.NullDecimal `json:"amount"`
}

// Used reports whether the server has ever seen the token.
func (s Status) Used() bool {
	return s.Spent == SpentFalse || s.Spent == SpentTrue
}

type healthCheckResponse struct {
	Status  string            `json:"status"`
	Results map[string]Status `json:"results"`
}

package webcash

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest number of fractional digits an amount may carry.
const MaxDecimals = 8

// UnknownAmount is the serialized form of an amount that is not known.
const UnknownAmount = "?"

// ValidateAmount checks that the amount has no more than MaxDecimals
// significant fractional digits. Trailing zeros do not count.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MaxDecimals)) {
		return fmt.Errorf("%w: %s", ErrPrecision, amount.String())
	}
	return nil
}

// FormatAmount returns the canonical string form of an amount, with
// trailing fractional zeros stripped ("1.0" becomes "1").
func FormatAmount(amount decimal.Decimal) string {
	return amount.String()
}

// FormatNullAmount returns the canonical form of a possibly unknown amount.
func FormatNullAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return UnknownAmount
	}
	return FormatAmount(amount.Decimal)
}

// ParseAmount parses the amount field of a serialized token. Anything after
// the first colon is ignored, and a single leading "e" is stripped.
func ParseAmount(raw string) (decimal.Decimal, error) {
	field, _, _ := strings.Cut(raw, ":")
	field = strings.TrimPrefix(field, "e")
	if field == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty amount in %q", ErrFormat, raw)
	}
	amount, err := decimal.NewFromString(field)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %q: %v", ErrFormat, raw, err)
	}
	return amount, nil
}

// parseNullAmount is ParseAmount that also accepts the unknown marker.
func parseNullAmount(raw string) (decimal.NullDecimal, error) {
	field, _, _ := strings.Cut(raw, ":")
	if strings.TrimPrefix(field, "e") == UnknownAmount {
		return decimal.NullDecimal{}, nil
	}
	amount, err := ParseAmount(field)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(amount), nil
}

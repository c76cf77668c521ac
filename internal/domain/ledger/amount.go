package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value a numeric(12,2) column holds
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ParseAmount converts a decoded JSON value into a positive amount with at
// most two decimal places
func ParseAmount(v any) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, apperror.NewInvalidAmountError("Amount is required")
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseAmountJSON parses a payment amount straight from its raw request
// field. Missing, null and non-numeric values are invalid amounts.
func ParseAmountJSON(raw json.RawMessage) (decimal.Decimal, error) {
	v, err := decodeRaw(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return ParseAmount(v)
}

// ParseDepositJSON parses an optional initial deposit. A missing, null or
// zero deposit means no payment is taken.
func ParseDepositJSON(raw json.RawMessage) (decimal.Decimal, error) {
	v, err := decodeRaw(raw)
	if err != nil || v == nil {
		return decimal.Zero, err
	}
	d, err := toDecimal(v)
	if err != nil || d.IsZero() {
		return decimal.Zero, err
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseTotalJSON parses an order total. A missing total is zero; a
// non-numeric one is an invalid amount.
func ParseTotalJSON(raw json.RawMessage) (decimal.Decimal, error) {
	v, err := decodeRaw(raw)
	if err != nil || v == nil {
		return decimal.Zero, err
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidateTotal(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func decodeRaw(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperror.NewInvalidAmountError("Amount must be a number")
	}
	return v, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(x))
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return decimal.Zero, apperror.NewInvalidAmountError("Amount must be a number")
	}
	return d, nil
}

// ValidateAmount checks that d is a positive money amount
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperror.NewInvalidAmountError("Amount must be greater than zero")
	}
	if !d.Equal(d.Truncate(2)) {
		return apperror.NewInvalidAmountError("Amount must have at most two decimal places")
	}
	if d.GreaterThan(MaxAmount) {
		return apperror.NewInvalidAmountError("Amount is too large")
	}
	return nil
}

// ValidateTotal checks an order total, which may be zero
func ValidateTotal(d decimal.Decimal) error {
	if d.IsNegative() {
		return apperror.NewBadRequestError("Total amount cannot be negative")
	}
	if !d.Equal(d.Truncate(2)) {
		return apperror.NewBadRequestError("Total amount must have at most two decimal places")
	}
	if d.GreaterThan(MaxAmount) {
		return apperror.NewBadRequestError("Total amount is too large")
	}
	return nil
}

// CheckWithinRemaining rejects a payment larger than the outstanding balance
func CheckWithinRemaining(amount, paid, total decimal.Decimal) error {
	remaining := total.Sub(paid)
	if amount.GreaterThan(remaining) {
		return apperror.NewInvalidAmountError(
			fmt.Sprintf("Amount %s exceeds remaining balance %s", amount.StringFixed(2), remaining.StringFixed(2)))
	}
	return nil
}

// ValidateMethod rejects payment methods outside the closed set
func ValidateMethod(m enum.PaymentMethod) error {
	if !m.IsValid() {
		return apperror.NewBadRequestError(fmt.Sprintf("Invalid payment method %q", m))
	}
	return nil
}

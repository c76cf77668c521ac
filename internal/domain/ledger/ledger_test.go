package ledger

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrderAndReceiptNumbers(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("EAT", 3*3600))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"print job", OrderNumber(enum.OrderKindPrintJob, at, 42), "PRN-20240309110507-42"},
		{"photo session", OrderNumber(enum.OrderKindPhotoSession, at, 7), "PHO-20240309110507-7"},
		{"print receipt", ReceiptNumber(enum.OrderKindPrintJob, at, 1), "RCPT-PRN-20240309110507-1"},
		{"photo receipt", ReceiptNumber(enum.OrderKindPhotoSession, at, 1001), "RCPT-PHO-20240309110507-1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestNumbersDifferWithinTheSameSecond(t *testing.T) {
	at := time.Now()
	assert.NotEqual(t,
		ReceiptNumber(enum.OrderKindPrintJob, at, 1),
		ReceiptNumber(enum.OrderKindPrintJob, at, 2))
}

func TestDeriveStatus(t *testing.T) {
	total := dec("1000.00")

	tests := []struct {
		name    string
		kind    enum.OrderKind
		paid    string
		current enum.OrderStatus
		want    enum.OrderStatus
	}{
		{"new print job", enum.OrderKindPrintJob, "0", "", enum.OrderStatusPending},
		{"new photo session", enum.OrderKindPhotoSession, "0", "", enum.OrderStatusScheduled},
		{"partial payment", enum.OrderKindPrintJob, "400.00", enum.OrderStatusPending, enum.OrderStatusPartiallyPaid},
		{"full payment", enum.OrderKindPrintJob, "1000.00", enum.OrderStatusPartiallyPaid, enum.OrderStatusCompleted},
		{"payment overrides in progress", enum.OrderKindPhotoSession, "10.00", enum.OrderStatusInProgress, enum.OrderStatusPartiallyPaid},
		{"nothing paid keeps lifecycle status", enum.OrderKindPrintJob, "0", enum.OrderStatusInProgress, enum.OrderStatusInProgress},
		{"nothing paid resets payment status", enum.OrderKindPhotoSession, "0", enum.OrderStatusCompleted, enum.OrderStatusScheduled},
		{"delivered is kept", enum.OrderKindPrintJob, "1000.00", enum.OrderStatusDelivered, enum.OrderStatusDelivered},
		{"cancelled is kept", enum.OrderKindPrintJob, "400.00", enum.OrderStatusCancelled, enum.OrderStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.kind, dec(tt.paid), total, tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_ZeroTotal(t *testing.T) {
	got := DeriveStatus(enum.OrderKindPrintJob, decimal.Zero, decimal.Zero, "")
	assert.Equal(t, enum.OrderStatusPending, got)
}

func TestCheckPayable(t *testing.T) {
	assert.NoError(t, CheckPayable("print_job:1", enum.OrderStatusPending))
	assert.NoError(t, CheckPayable("print_job:1", enum.OrderStatusDelivered))

	err := CheckPayable("print_job:1", enum.OrderStatusCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrOrderInTerminalState))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		kind     enum.OrderKind
		from, to enum.OrderStatus
		want     bool
	}{
		{"start work", enum.OrderKindPrintJob, enum.OrderStatusPending, enum.OrderStatusInProgress, true},
		{"deliver", enum.OrderKindPrintJob, enum.OrderStatusCompleted, enum.OrderStatusDelivered, true},
		{"cancel", enum.OrderKindPhotoSession, enum.OrderStatusScheduled, enum.OrderStatusCancelled, true},
		{"photo processing", enum.OrderKindPhotoSession, enum.OrderStatusPartiallyPaid, enum.OrderStatusProcessing, true},
		{"print jobs have no processing", enum.OrderKindPrintJob, enum.OrderStatusPending, enum.OrderStatusProcessing, false},
		{"cannot set completed", enum.OrderKindPrintJob, enum.OrderStatusPending, enum.OrderStatusCompleted, false},
		{"cannot set partially paid", enum.OrderKindPrintJob, enum.OrderStatusPending, enum.OrderStatusPartiallyPaid, false},
		{"cannot leave cancelled", enum.OrderKindPrintJob, enum.OrderStatusCancelled, enum.OrderStatusInProgress, false},
		{"cannot leave delivered", enum.OrderKindPhotoSession, enum.OrderStatusDelivered, enum.OrderStatusCancelled, false},
		{"cannot go back to initial", enum.OrderKindPrintJob, enum.OrderStatusInProgress, enum.OrderStatusPending, false},
		{"same status", enum.OrderKindPrintJob, enum.OrderStatusInProgress, enum.OrderStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.kind, tt.from, tt.to))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{"string", "400.00", "400", false},
		{"json number", json.Number("12.5"), "12.5", false},
		{"float", 99.99, "99.99", false},
		{"int", 5, "5", false},
		{"trailing zeros", "10.500", "10.5", false},
		{"zero", "0", "", true},
		{"negative", -3.0, "", true},
		{"not a number", "abc", "", true},
		{"too many places", "1.005", "", true},
		{"missing", nil, "", true},
		{"bool", true, "", true},
		{"too large", "10000000000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseRawAmounts(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(json.RawMessage) (decimal.Decimal, error)
		raw     string
		want    string
		wantErr bool
	}{
		{"payment string", ParseAmountJSON, `"250.50"`, "250.5", false},
		{"payment number", ParseAmountJSON, `250.50`, "250.5", false},
		{"payment letters", ParseAmountJSON, `"abc"`, "", true},
		{"payment empty string", ParseAmountJSON, `""`, "", true},
		{"payment bool", ParseAmountJSON, `true`, "", true},
		{"payment null", ParseAmountJSON, `null`, "", true},
		{"payment missing", ParseAmountJSON, ``, "", true},
		{"payment object", ParseAmountJSON, `{"v":1}`, "", true},
		{"deposit missing", ParseDepositJSON, ``, "0", false},
		{"deposit zero", ParseDepositJSON, `"0"`, "0", false},
		{"deposit value", ParseDepositJSON, `400`, "400", false},
		{"deposit letters", ParseDepositJSON, `"lots"`, "", true},
		{"deposit negative", ParseDepositJSON, `-1`, "", true},
		{"total missing", ParseTotalJSON, ``, "0", false},
		{"total value", ParseTotalJSON, `"1000.00"`, "1000", false},
		{"total letters", ParseTotalJSON, `"lots"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperror.KindInvalidAmount, apperror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseTotalJSON_NegativeIsBadRequest(t *testing.T) {
	_, err := ParseTotalJSON(json.RawMessage(`"-5"`))
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestCheckWithinRemaining(t *testing.T) {
	assert.NoError(t, CheckWithinRemaining(dec("600"), dec("400"), dec("1000")))

	err := CheckWithinRemaining(dec("600.01"), dec("400"), dec("1000"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidAmount, apperror.KindOf(err))

	err = CheckWithinRemaining(dec("0.01"), dec("1000"), dec("1000"))
	assert.True(t, errors.Is(err, apperror.ErrInvalidAmount))
}

func TestValidateMethod(t *testing.T) {
	assert.NoError(t, ValidateMethod(enum.PaymentMethodMobileMoney))
	assert.Error(t, ValidateMethod("cheque"))
}

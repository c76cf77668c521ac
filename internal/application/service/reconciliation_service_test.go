package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/ledger"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T) (*ReconciliationService, *LedgerService, *memory.LedgerStore) {
	t.Helper()
	store := memory.NewLedgerStore(time.Second)
	return NewReconciliationService(store, nil, nil, DefaultRetryPolicy),
		NewLedgerService(store, nil, nil, DefaultRetryPolicy),
		store
}

func TestReconciliation_RepairsMissingNumbers(t *testing.T) {
	rec, _, store := newTestReconciler(t)
	ctx := context.Background()

	createdAt := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	var ref entity.OrderRef
	var receiptID uint
	require.NoError(t, store.RunInTx(ctx, func(tx repository.LedgerTx) error {
		job := printJobDraft(1, "100")
		job.CreatedAt = createdAt
		job.Status = enum.OrderStatusPartiallyPaid
		job.PaidAmount = dec("40")
		if err := tx.CreateOrder(ctx, job); err != nil {
			return err
		}
		ref = entity.RefOf(job)
		orderID := ref.ID()
		receipt := &entity.PaymentReceipt{
			OrderKind:     ref.Kind(),
			OrderID:       &orderID,
			ClientID:      1,
			TotalAmount:   dec("100"),
			PaidAmount:    dec("40"),
			PaymentMethod: enum.PaymentMethodCash,
			IssuedAt:      createdAt,
		}
		if err := tx.CreateReceipt(ctx, receipt); err != nil {
			return err
		}
		receiptID = receipt.ID
		return nil
	}))

	report, err := rec.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrderNumbersRepaired)
	assert.Equal(t, 1, report.ReceiptNumbersRepaired)
	assert.Equal(t, 1, report.OrdersChecked)
	assert.Empty(t, report.Mismatches)

	order, err := store.GetOrder(ctx, ref)
	require.NoError(t, err)
	require.NotNil(t, order.Billing().ReceiptNumber)
	assert.Equal(t, "PRN-20240309140507-1", *order.Billing().ReceiptNumber)

	receipts, err := store.ListReceiptsByOrder(ctx, ref, repository.SortAsc)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, ledger.ReceiptNumber(enum.OrderKindPrintJob, createdAt, receiptID), *receipts[0].ReceiptNumber)

	again, err := rec.Run(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, again.OrderNumbersRepaired)
	assert.Zero(t, again.ReceiptNumbersRepaired)
}

func TestReconciliation_VerifyBalances(t *testing.T) {
	rec, svc, store := newTestReconciler(t)
	ctx := context.Background()

	healthy := createOrder(t, svc, printJobDraft(1, "100"))
	_, err := pay(svc, healthy, "30")
	require.NoError(t, err)

	drifted := createOrder(t, svc, photoSessionDraft(1, "200"))
	_, err = pay(svc, drifted, "50")
	require.NoError(t, err)
	require.NoError(t, store.RunInTx(ctx, func(tx repository.LedgerTx) error {
		return tx.UpdateBalance(ctx, drifted, dec("200"), enum.OrderStatusCompleted)
	}))

	checked, mismatches, err := rec.VerifyBalances(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	require.Len(t, mismatches, 1)
	assert.Equal(t, drifted, mismatches[0].Order)
	assert.True(t, mismatches[0].Paid.Equal(dec("200")))
	assert.True(t, mismatches[0].ReceiptSum.Equal(dec("50")))
	assert.False(t, mismatches[0].Repaired)

	_, mismatches, err = rec.VerifyBalances(ctx, true)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.True(t, mismatches[0].Repaired)

	order, err := svc.GetOrder(ctx, drifted)
	require.NoError(t, err)
	assert.True(t, order.Billing().PaidAmount.Equal(dec("50")))
	assert.Equal(t, enum.OrderStatusPartiallyPaid, order.Billing().Status)
	assertLedgerInvariants(t, svc, drifted)

	_, mismatches, err = rec.VerifyBalances(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestReconciliation_RepairKeepsTerminalStatus(t *testing.T) {
	rec, svc, store := newTestReconciler(t)
	ctx := context.Background()

	ref := createOrder(t, svc, printJobDraft(1, "100"))
	_, err := svc.TransitionStatus(ctx, ref, enum.OrderStatusDelivered)
	require.NoError(t, err)
	require.NoError(t, store.RunInTx(ctx, func(tx repository.LedgerTx) error {
		return tx.UpdateBalance(ctx, ref, dec("10"), enum.OrderStatusDelivered)
	}))

	_, mismatches, err := rec.VerifyBalances(ctx, true)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)

	order, err := svc.GetOrder(ctx, ref)
	require.NoError(t, err)
	assert.True(t, order.Billing().PaidAmount.Equal(decimal.Zero))
	assert.Equal(t, enum.OrderStatusDelivered, order.Billing().Status)
}

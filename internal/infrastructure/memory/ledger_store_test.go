package memory

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPrintJob(t *testing.T, s *LedgerStore, total string, number string) entity.OrderRef {
	t.Helper()
	ctx := context.Background()
	job := &entity.PrintJob{
		BillingInfo: entity.BillingInfo{
			ClientID:    1,
			TotalAmount: decimal.RequireFromString(total),
			Status:      enum.OrderStatusPending,
		},
		Title: "Menu cards",
	}
	err := s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		if err := tx.CreateOrder(ctx, job); err != nil {
			return err
		}
		return tx.AssignOrderNumber(ctx, entity.RefOf(job), number)
	})
	require.NoError(t, err)
	return entity.RefOf(job)
}

func TestLedgerStore_RollbackDiscardsWrites(t *testing.T) {
	s := NewLedgerStore(time.Second)
	ctx := context.Background()
	ref := seedPrintJob(t, s, "300", "PRN-20240101000000-1")

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		if _, err := tx.LockOrder(ctx, ref); err != nil {
			return err
		}
		id := ref.ID()
		if err := tx.CreateReceipt(ctx, &entity.PaymentReceipt{
			OrderKind: ref.Kind(), OrderID: &id, ClientID: 1,
			PaidAmount: decimal.NewFromInt(100), PaymentMethod: enum.PaymentMethodCash,
		}); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, ref, decimal.NewFromInt(100), enum.OrderStatusPartiallyPaid); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	order, err := s.GetOrder(ctx, ref)
	require.NoError(t, err)
	assert.True(t, order.Billing().PaidAmount.IsZero())
	assert.Equal(t, enum.OrderStatusPending, order.Billing().Status)

	sum, err := s.SumReceiptsByOrder(ctx, ref)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestLedgerStore_LockTimeout(t *testing.T) {
	s := NewLedgerStore(20 * time.Millisecond)
	ctx := context.Background()
	ref := seedPrintJob(t, s, "300", "PRN-20240101000000-1")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
			if _, err := tx.LockOrder(ctx, ref); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	err := s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		_, err := tx.LockOrder(ctx, ref)
		return err
	})
	assert.Equal(t, apperror.KindConcurrentModification, apperror.KindOf(err))

	close(release)
	require.NoError(t, <-done)

	err = s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		_, err := tx.LockOrder(ctx, ref)
		return err
	})
	assert.NoError(t, err, "the lock is released when the first unit of work ends")
}

func TestLedgerStore_DuplicateNumberRejected(t *testing.T) {
	s := NewLedgerStore(time.Second)
	seedPrintJob(t, s, "300", "PRN-20240101000000-1")

	ctx := context.Background()
	err := s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		job := &entity.PrintJob{BillingInfo: entity.BillingInfo{ClientID: 1, TotalAmount: decimal.NewFromInt(10)}}
		if err := tx.CreateOrder(ctx, job); err != nil {
			return err
		}
		return tx.AssignOrderNumber(ctx, entity.RefOf(job), "PRN-20240101000000-1")
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	missing, err := s.ListOrdersMissingNumber(ctx, enum.OrderKindPrintJob)
	require.NoError(t, err)
	assert.Empty(t, missing, "the rejected order was never committed")
}

func TestLedgerStore_DeleteDetachesReceipts(t *testing.T) {
	s := NewLedgerStore(time.Second)
	ctx := context.Background()
	ref := seedPrintJob(t, s, "300", "PRN-20240101000000-1")

	var receiptID uint
	err := s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		id := ref.ID()
		r := &entity.PaymentReceipt{
			OrderKind: ref.Kind(), OrderID: &id, ClientID: 1,
			PaidAmount: decimal.NewFromInt(50), PaymentMethod: enum.PaymentMethodCash,
		}
		if err := tx.CreateReceipt(ctx, r); err != nil {
			return err
		}
		receiptID = r.ID
		return tx.AssignReceiptNumber(ctx, r.ID, "RCPT-PRN-20240101000000-1")
	})
	require.NoError(t, err)

	err = s.RunInTx(ctx, func(tx domainRepo.LedgerTx) error {
		if _, err := tx.LockOrder(ctx, ref); err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, ref)
	})
	require.NoError(t, err)

	order, err := s.GetOrder(ctx, ref)
	require.NoError(t, err)
	assert.Nil(t, order)

	s.mu.RLock()
	receipt := s.receipts[receiptID]
	s.mu.RUnlock()
	require.NotNil(t, receipt)
	assert.Nil(t, receipt.OrderID)
	require.NotNil(t, receipt.ReceiptNumber)
	assert.Equal(t, "RCPT-PRN-20240101000000-1", *receipt.ReceiptNumber)
}

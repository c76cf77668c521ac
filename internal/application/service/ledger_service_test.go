package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/infrastructure/memory"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func newTestLedger(t *testing.T) (*LedgerService, *memory.LedgerStore) {
	t.Helper()
	store := memory.NewLedgerStore(5 * time.Second)
	return NewLedgerService(store, zap.NewNop(), nil, RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}), store
}

func printJobDraft(clientID uint, total string) *entity.PrintJob {
	return &entity.PrintJob{
		BillingInfo: entity.BillingInfo{ClientID: clientID, TotalAmount: dec(total)},
		Title:       "Wedding banner",
		PrintType:   enum.PrintTypeLargeFormat,
		Size:        enum.PrintSizeA1,
		Quantity:    1,
	}
}

func photoSessionDraft(clientID uint, total string) *entity.PhotoSession {
	return &entity.PhotoSession{
		BillingInfo: entity.BillingInfo{ClientID: clientID, TotalAmount: dec(total)},
		SessionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:    strPtr("Studio A"),
		EventType:   enum.EventTypePortrait,
	}
}

func createOrder(t *testing.T, svc *LedgerService, draft entity.Billable) entity.OrderRef {
	t.Helper()
	res, err := svc.CreateOrderWithInitialDeposit(context.Background(), draft, decimal.Zero, "", nil)
	require.NoError(t, err)
	return entity.RefOf(res.Order)
}

func pay(svc *LedgerService, ref entity.OrderRef, amount string) (*PaymentResult, error) {
	return svc.RecordPayment(context.Background(), RecordPaymentInput{
		Order:  ref,
		Amount: dec(amount),
		Method: enum.PaymentMethodCash,
	})
}

// assertLedgerInvariants checks the balance rules that must hold after every
// ledger operation
func assertLedgerInvariants(t *testing.T, svc *LedgerService, ref entity.OrderRef) {
	t.Helper()
	ctx := context.Background()

	order, err := svc.GetOrder(ctx, ref)
	require.NoError(t, err)
	b := order.Billing()

	assert.False(t, b.PaidAmount.IsNegative(), "paid must not be negative")
	assert.True(t, b.PaidAmount.LessThanOrEqual(b.TotalAmount), "paid %s exceeds total %s", b.PaidAmount, b.TotalAmount)
	assert.True(t, b.RemainingAmount().Equal(b.TotalAmount.Sub(b.PaidAmount)))

	receipts, err := svc.ListReceipts(ctx, ref, repository.SortAsc)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, r := range receipts {
		sum = sum.Add(r.PaidAmount)
		assert.True(t, r.PaidAmount.IsPositive())
		require.NotNil(t, r.ReceiptNumber)
	}
	assert.True(t, sum.Equal(b.PaidAmount), "receipts sum to %s, paid is %s", sum, b.PaidAmount)
}

func TestLedgerService_CreateOrderAssignsNumber(t *testing.T) {
	svc, _ := newTestLedger(t)

	res, err := svc.CreateOrderWithInitialDeposit(context.Background(), printJobDraft(1, "1000"), decimal.Zero, "", nil)
	require.NoError(t, err)

	b := res.Order.Billing()
	require.NotNil(t, b.ReceiptNumber)
	assert.Regexp(t, `^PRN-\d{14}-1$`, *b.ReceiptNumber)
	assert.Equal(t, enum.OrderStatusPending, b.Status)
	assert.True(t, b.PaidAmount.IsZero())
	assert.Nil(t, res.Receipt)

	session, err := svc.CreateOrderWithInitialDeposit(context.Background(), photoSessionDraft(1, "500"), decimal.Zero, "", nil)
	require.NoError(t, err)
	assert.Regexp(t, `^PHO-\d{14}-1$`, *session.Order.Billing().ReceiptNumber)
	assert.Equal(t, enum.OrderStatusScheduled, session.Order.Billing().Status)
}

func TestLedgerService_CreateOrderWithDeposit(t *testing.T) {
	svc, _ := newTestLedger(t)
	user := uuid.New()

	res, err := svc.CreateOrderWithInitialDeposit(context.Background(), photoSessionDraft(3, "800"), dec("300"), enum.PaymentMethodMobileMoney, &user)
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)

	b := res.Order.Billing()
	assert.True(t, b.PaidAmount.Equal(dec("300")))
	assert.Equal(t, enum.OrderStatusPartiallyPaid, b.Status)
	assert.Equal(t, &user, b.IssuedByID)

	assert.Regexp(t, `^RCPT-PHO-\d{14}-\d+$`, *res.Receipt.ReceiptNumber)
	assert.True(t, res.Receipt.TotalAmount.Equal(dec("800")))
	assert.Equal(t, enum.PaymentMethodMobileMoney, res.Receipt.PaymentMethod)
	require.NotNil(t, res.Receipt.Notes)
	assert.Equal(t, "Initial deposit", *res.Receipt.Notes)

	assertLedgerInvariants(t, svc, entity.RefOf(res.Order))
}

func TestLedgerService_CreateOrderRejectsBadDeposit(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		total   string
		deposit string
		method  enum.PaymentMethod
		kind    apperror.Kind
	}{
		{"deposit above total", "100", "150", enum.PaymentMethodCash, apperror.KindInvalidAmount},
		{"negative deposit", "100", "-1", enum.PaymentMethodCash, apperror.KindInvalidAmount},
		{"three decimals", "100", "10.005", enum.PaymentMethodCash, apperror.KindInvalidAmount},
		{"unknown method", "100", "10", enum.PaymentMethod("cheque"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrderWithInitialDeposit(ctx, printJobDraft(1, tt.total), dec(tt.deposit), tt.method, nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	missing, err := store.ListOrdersMissingNumber(ctx, enum.OrderKindPrintJob)
	require.NoError(t, err)
	assert.Empty(t, missing)
	remaining, err := svc.TotalRemainingAcrossOrders(ctx, 1)
	require.NoError(t, err)
	assert.True(t, remaining.IsZero(), "no order may have been created")
}

func TestLedgerService_PartialPaymentsScenario(t *testing.T) {
	svc, _ := newTestLedger(t)
	ref := createOrder(t, svc, printJobDraft(1, "1000"))

	res, err := pay(svc, ref, "400")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPartiallyPaid, res.Order.Billing().Status)
	assert.True(t, res.Order.Billing().RemainingAmount().Equal(dec("600")))
	assert.Regexp(t, `^RCPT-PRN-\d{14}-\d+$`, *res.Receipt.ReceiptNumber)
	assert.True(t, res.Receipt.TotalAmount.Equal(dec("1000")))

	res, err = pay(svc, ref, "600")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, res.Order.Billing().Status)
	assert.True(t, res.Order.Billing().RemainingAmount().IsZero())

	_, err = pay(svc, ref, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	assertLedgerInvariants(t, svc, ref)
	receipts, err := svc.ListReceipts(context.Background(), ref, repository.SortAsc)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
}

func TestLedgerService_RecordPaymentValidation(t *testing.T) {
	svc, _ := newTestLedger(t)
	ref := createOrder(t, svc, printJobDraft(1, "100"))
	_, err := pay(svc, ref, "30")
	require.NoError(t, err)

	tests := []struct {
		name   string
		ref    entity.OrderRef
		amount string
		method enum.PaymentMethod
		target error
	}{
		{"zero amount", ref, "0", enum.PaymentMethodCash, apperror.ErrInvalidAmount},
		{"negative amount", ref, "-5", enum.PaymentMethodCash, apperror.ErrInvalidAmount},
		{"too many decimals", ref, "1.001", enum.PaymentMethodCash, apperror.ErrInvalidAmount},
		{"above remaining", ref, "70.01", enum.PaymentMethodCash, apperror.ErrInvalidAmount},
		{"unknown order", entity.PrintJobRef(999), "10", enum.PaymentMethodCash, apperror.ErrOrderNotFound},
		{"other variant", entity.PhotoSessionRef(ref.ID()), "10", enum.PaymentMethodCash, apperror.ErrOrderNotFound},
		{"zero ref", entity.OrderRef{}, "10", enum.PaymentMethodCash, apperror.ErrOrderNotFound},
		{"bad method", ref, "10", enum.PaymentMethod("barter"), apperror.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{Order: tt.ref, Amount: dec(tt.amount), Method: tt.method})
			require.Error(t, err)
			if tt.target == apperror.ErrBadRequest {
				appErr := apperror.GetAppError(err)
				require.NotNil(t, appErr)
				assert.Equal(t, 400, appErr.Code)
				return
			}
			assert.ErrorIs(t, err, tt.target)
		})
	}

	order, err := svc.GetOrder(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, order.Billing().PaidAmount.Equal(dec("30")), "rejected payments must not change the balance")
	assertLedgerInvariants(t, svc, ref)
}

func TestLedgerService_TerminalStates(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	t.Run("cancelled rejects payments", func(t *testing.T) {
		ref := createOrder(t, svc, printJobDraft(1, "100"))
		_, err := svc.TransitionStatus(ctx, ref, enum.OrderStatusCancelled)
		require.NoError(t, err)

		_, err = pay(svc, ref, "10")
		assert.ErrorIs(t, err, apperror.ErrOrderInTerminalState)
		receipts, err := svc.ListReceipts(ctx, ref, repository.SortAsc)
		require.NoError(t, err)
		assert.Empty(t, receipts)
	})

	t.Run("delivered accepts payments and keeps status", func(t *testing.T) {
		ref := createOrder(t, svc, printJobDraft(1, "100"))
		_, err := svc.TransitionStatus(ctx, ref, enum.OrderStatusDelivered)
		require.NoError(t, err)

		res, err := pay(svc, ref, "100")
		require.NoError(t, err)
		assert.Equal(t, enum.OrderStatusDelivered, res.Order.Billing().Status)
		assert.True(t, res.Order.Billing().IsFullyPaid())
		assertLedgerInvariants(t, svc, ref)
	})
}

func TestLedgerService_TransitionStatus(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()
	ref := createOrder(t, svc, photoSessionDraft(1, "500"))

	order, err := svc.TransitionStatus(ctx, ref, enum.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusInProgress, order.Billing().Status)

	_, err = svc.TransitionStatus(ctx, ref, enum.OrderStatusCompleted)
	require.Error(t, err, "payment-derived statuses cannot be set by hand")

	res, err := pay(svc, ref, "100")
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPartiallyPaid, res.Order.Billing().Status)

	_, err = svc.TransitionStatus(ctx, ref, enum.OrderStatusCancelled)
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, ref, enum.OrderStatusInProgress)
	assert.ErrorIs(t, err, apperror.ErrOrderInTerminalState)

	_, err = svc.TransitionStatus(ctx, entity.PhotoSessionRef(404), enum.OrderStatusInProgress)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestLedgerService_ClientAggregation(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	job := createOrder(t, svc, printJobDraft(7, "100"))
	session := createOrder(t, svc, photoSessionDraft(7, "200"))
	createOrder(t, svc, printJobDraft(8, "999"))

	_, err := pay(svc, job, "50")
	require.NoError(t, err)
	_, err = pay(svc, session, "75")
	require.NoError(t, err)

	total, err := svc.TotalRemainingAcrossOrders(ctx, 7)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("175")), "got %s", total)

	none, err := svc.TotalRemainingAcrossOrders(ctx, 42)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestLedgerService_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	svc, _ := newTestLedger(t)
	ref := createOrder(t, svc, printJobDraft(1, "1000"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = pay(svc, ref, "600")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
	}
	assert.Equal(t, 1, succeeded)

	order, err := svc.GetOrder(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, order.Billing().PaidAmount.Equal(dec("600")))
	assertLedgerInvariants(t, svc, ref)
}

func TestLedgerService_ConcurrentReceiptNumbersAreUnique(t *testing.T) {
	svc, _ := newTestLedger(t)
	jobs := []entity.OrderRef{
		createOrder(t, svc, printJobDraft(1, "1000")),
		createOrder(t, svc, printJobDraft(2, "1000")),
	}
	session := createOrder(t, svc, photoSessionDraft(1, "1000"))
	refs := append(jobs, session)

	const perOrder = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	numbers := make(map[string]int)
	for _, ref := range refs {
		for i := 0; i < perOrder; i++ {
			wg.Add(1)
			go func(ref entity.OrderRef) {
				defer wg.Done()
				res, err := pay(svc, ref, "10")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				numbers[*res.Receipt.ReceiptNumber]++
				mu.Unlock()
			}(ref)
		}
	}
	wg.Wait()

	assert.Len(t, numbers, len(refs)*perOrder)
	for n, count := range numbers {
		assert.Equal(t, 1, count, "receipt number %s issued more than once", n)
	}
	for _, ref := range refs {
		assertLedgerInvariants(t, svc, ref)
	}
}

func TestLedgerService_ListReceiptsOrdering(t *testing.T) {
	svc, _ := newTestLedger(t)
	ref := createOrder(t, svc, printJobDraft(1, "100"))
	for _, amount := range []string{"10", "20", "30"} {
		_, err := pay(svc, ref, amount)
		require.NoError(t, err)
	}

	asc, err := svc.ListReceipts(context.Background(), ref, repository.SortAsc)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.True(t, asc[0].PaidAmount.Equal(dec("10")))
	assert.True(t, asc[2].PaidAmount.Equal(dec("30")))

	desc, err := svc.ListReceipts(context.Background(), ref, repository.SortDesc)
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.True(t, desc[0].PaidAmount.Equal(dec("30")))

	_, err = svc.ListReceipts(context.Background(), entity.PrintJobRef(77), repository.SortAsc)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestLedgerService_DeleteOrderKeepsReceipts(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()
	ref := createOrder(t, svc, printJobDraft(1, "100"))
	res, err := pay(svc, ref, "40")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, ref))

	_, err = svc.GetOrder(ctx, ref)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
	assert.ErrorIs(t, svc.DeleteOrder(ctx, ref), apperror.ErrOrderNotFound)

	sum, err := store.SumReceiptsByOrder(ctx, ref)
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "receipts are detached from the deleted order")
	missing, err := store.ListReceiptsMissingNumber(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.NotNil(t, res.Receipt.ReceiptNumber)
}

// failingRepository injects a storage failure into one step of every unit of work
type failingRepository struct {
	repository.LedgerRepository
	step string
}

func (r *failingRepository) RunInTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	return r.LedgerRepository.RunInTx(ctx, func(tx repository.LedgerTx) error {
		return fn(&failingTx{LedgerTx: tx, step: r.step})
	})
}

type failingTx struct {
	repository.LedgerTx
	step string
}

var errDiskFull = errors.New("disk full")

func (t *failingTx) AssignReceiptNumber(ctx context.Context, id uint, number string) error {
	if t.step == "assign_receipt_number" {
		return apperror.NewPersistenceFailureError(errDiskFull)
	}
	return t.LedgerTx.AssignReceiptNumber(ctx, id, number)
}

func (t *failingTx) UpdateBalance(ctx context.Context, ref entity.OrderRef, paid decimal.Decimal, status enum.OrderStatus) error {
	if t.step == "update_balance" {
		return apperror.NewPersistenceFailureError(errDiskFull)
	}
	return t.LedgerTx.UpdateBalance(ctx, ref, paid, status)
}

func (t *failingTx) LockOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error) {
	if t.step == "lock_order" {
		return nil, apperror.NewConcurrentModificationError(errors.New("lock timeout"))
	}
	return t.LedgerTx.LockOrder(ctx, ref)
}

func TestLedgerService_FailedUnitOfWorkLeavesNoTrace(t *testing.T) {
	for _, step := range []string{"assign_receipt_number", "update_balance"} {
		t.Run(step, func(t *testing.T) {
			store := memory.NewLedgerStore(time.Second)
			healthy := NewLedgerService(store, nil, nil, DefaultRetryPolicy)
			ref := createOrder(t, healthy, printJobDraft(1, "100"))
			_, err := pay(healthy, ref, "25")
			require.NoError(t, err)

			broken := NewLedgerService(&failingRepository{LedgerRepository: store, step: step}, nil, nil, DefaultRetryPolicy)
			_, err = pay(broken, ref, "25")
			assert.ErrorIs(t, err, apperror.ErrPersistenceFailure)

			_, err = broken.CreateOrderWithInitialDeposit(context.Background(), printJobDraft(1, "50"), dec("10"), enum.PaymentMethodCard, nil)
			assert.ErrorIs(t, err, apperror.ErrPersistenceFailure)

			order, err := healthy.GetOrder(context.Background(), ref)
			require.NoError(t, err)
			assert.True(t, order.Billing().PaidAmount.Equal(dec("25")))
			assertLedgerInvariants(t, healthy, ref)

			remaining, err := healthy.TotalRemainingAcrossOrders(context.Background(), 1)
			require.NoError(t, err)
			assert.True(t, remaining.Equal(dec("75")), "the failed creation must not leave an order behind")
		})
	}
}

func TestLedgerService_RetriesThenSurfacesConcurrentModification(t *testing.T) {
	store := memory.NewLedgerStore(time.Second)
	healthy := NewLedgerService(store, nil, nil, DefaultRetryPolicy)
	ref := createOrder(t, healthy, printJobDraft(1, "100"))

	broken := NewLedgerService(&failingRepository{LedgerRepository: store, step: "lock_order"}, nil, nil, RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond})
	_, err := pay(broken, ref, "10")
	assert.ErrorIs(t, err, apperror.ErrConcurrentModification)
}

func TestLedgerService_LockTimeoutIsConcurrentModification(t *testing.T) {
	store := memory.NewLedgerStore(20 * time.Millisecond)
	svc := NewLedgerService(store, nil, nil, RetryPolicy{})
	ref := createOrder(t, svc, printJobDraft(1, "100"))

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.RunInTx(context.Background(), func(tx repository.LedgerTx) error {
			if _, err := tx.LockOrder(context.Background(), ref); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := pay(svc, ref, "10")
	assert.ErrorIs(t, err, apperror.ErrConcurrentModification)

	close(release)
	require.NoError(t, <-done)

	_, err = pay(svc, ref, "10")
	assert.NoError(t, err)
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/ledger"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// initialDepositNote is attached to the receipt of money collected at intake
const initialDepositNote = "Initial deposit"

// LedgerService is the only writer of order balances and payment receipts
type LedgerService struct {
	repo    repository.LedgerRepository
	logger  *zap.Logger
	metrics *metrics.Ledger
	retry   RetryPolicy
	now     func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	repo repository.LedgerRepository,
	logger *zap.Logger,
	m *metrics.Ledger,
	retry RetryPolicy,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewLedger(nil)
	}
	return &LedgerService{
		repo:    repo,
		logger:  logger,
		metrics: m,
		retry:   retry,
		now:     time.Now,
	}
}

// RecordPaymentInput represents a payment against an existing order
type RecordPaymentInput struct {
	Order      entity.OrderRef
	Amount     decimal.Decimal
	Method     enum.PaymentMethod
	Notes      *string
	ActingUser *uuid.UUID
}

// PaymentResult is the order snapshot after a ledger write and the receipt
// it produced, if any
type PaymentResult struct {
	Order   entity.Billable        `json:"order"`
	Receipt *entity.PaymentReceipt `json:"receipt,omitempty"`
}

// RecordPayment records one payment against an order. The order is locked
// for the whole read-validate-write cycle, so concurrent payments against
// the same order are serialized and never push paid above total.
func (s *LedgerService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*PaymentResult, error) {
	if input.Order.IsZero() {
		return nil, apperror.NewOrderNotFoundError(input.Order.String())
	}
	if err := ledger.ValidateAmount(input.Amount); err != nil {
		return nil, s.rejected(input.Order, err)
	}
	if err := ledger.ValidateMethod(input.Method); err != nil {
		return nil, err
	}

	started := time.Now()
	var result *PaymentResult
	err := s.retry.run(ctx, s.logger, "record_payment", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			order, err := tx.LockOrder(ctx, input.Order)
			if err != nil {
				return err
			}
			receipt, err := s.applyPayment(ctx, tx, order, input.Amount, input.Method, input.Notes, input.ActingUser)
			if err != nil {
				return err
			}
			result = &PaymentResult{Order: order, Receipt: receipt}
			return nil
		})
	})
	s.metrics.ObserveUnitOfWork("record_payment", started, err)
	if err != nil {
		return nil, s.rejected(input.Order, err)
	}

	s.recorded(result)
	return result, nil
}

// CreateOrderWithInitialDeposit persists a new order and, when deposit is
// positive, records it as the order's first payment in the same unit of work
func (s *LedgerService) CreateOrderWithInitialDeposit(
	ctx context.Context,
	draft entity.Billable,
	deposit decimal.Decimal,
	method enum.PaymentMethod,
	actingUser *uuid.UUID,
) (*PaymentResult, error) {
	if draft == nil || !draft.Kind().IsValid() {
		return nil, apperror.NewBadRequestError("Unknown order type")
	}
	b := draft.Billing()
	if b.ClientID == 0 {
		return nil, apperror.NewBadRequestError("Client is required")
	}
	if err := ledger.ValidateTotal(b.TotalAmount); err != nil {
		return nil, err
	}
	if deposit.IsNegative() {
		return nil, apperror.NewInvalidAmountError("Initial deposit cannot be negative")
	}
	if deposit.IsPositive() {
		if err := ledger.ValidateAmount(deposit); err != nil {
			return nil, err
		}
		if err := ledger.ValidateMethod(method); err != nil {
			return nil, err
		}
		if err := ledger.CheckWithinRemaining(deposit, decimal.Zero, b.TotalAmount); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	var result *PaymentResult
	err := s.retry.run(ctx, s.logger, "create_order", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			order := entity.CloneBillable(draft)
			ob := order.Billing()
			ob.ID = 0
			ob.ReceiptNumber = nil
			ob.PaidAmount = decimal.Zero
			ob.Status = order.Kind().InitialStatus()
			ob.IssuedByID = actingUser
			ob.CreatedAt = s.timestamp()

			if err := tx.CreateOrder(ctx, order); err != nil {
				return err
			}
			ref := entity.RefOf(order)
			number := ledger.OrderNumber(ref.Kind(), ob.CreatedAt, ob.ID)
			if err := tx.AssignOrderNumber(ctx, ref, number); err != nil {
				return err
			}
			ob.ReceiptNumber = &number

			result = &PaymentResult{Order: order}
			if !deposit.IsPositive() {
				return nil
			}
			note := initialDepositNote
			receipt, err := s.applyPayment(ctx, tx, order, deposit, method, &note, actingUser)
			if err != nil {
				return err
			}
			result.Receipt = receipt
			return nil
		})
	})
	s.metrics.ObserveUnitOfWork("create_order", started, err)
	if err != nil {
		s.logger.Warn("order creation failed", zap.String("order_kind", draft.Kind().String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order", entity.RefOf(result.Order).String()),
		zap.String("receipt_number", *result.Order.Billing().ReceiptNumber),
		zap.String("total", result.Order.Billing().TotalAmount.StringFixed(2)))
	if result.Receipt != nil {
		s.recorded(result)
	}
	return result, nil
}

// applyPayment is the single payment step shared by every ledger write.
// The caller holds the order's lock.
func (s *LedgerService) applyPayment(
	ctx context.Context,
	tx repository.LedgerTx,
	order entity.Billable,
	amount decimal.Decimal,
	method enum.PaymentMethod,
	notes *string,
	actingUser *uuid.UUID,
) (*entity.PaymentReceipt, error) {
	ref := entity.RefOf(order)
	b := order.Billing()

	if err := ledger.CheckPayable(ref.String(), b.Status); err != nil {
		return nil, err
	}
	if err := ledger.CheckWithinRemaining(amount, b.PaidAmount, b.TotalAmount); err != nil {
		return nil, err
	}

	orderID := ref.ID()
	receipt := &entity.PaymentReceipt{
		OrderKind:     ref.Kind(),
		OrderID:       &orderID,
		ClientID:      b.ClientID,
		TotalAmount:   b.TotalAmount,
		PaidAmount:    amount,
		PaymentMethod: method,
		Notes:         notes,
		IssuedByID:    actingUser,
		IssuedAt:      s.timestamp(),
	}
	if err := tx.CreateReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	number := ledger.ReceiptNumber(ref.Kind(), receipt.IssuedAt, receipt.ID)
	if err := tx.AssignReceiptNumber(ctx, receipt.ID, number); err != nil {
		return nil, err
	}
	receipt.ReceiptNumber = &number

	paid := b.PaidAmount.Add(amount)
	status := ledger.DeriveStatus(ref.Kind(), paid, b.TotalAmount, b.Status)
	if err := tx.UpdateBalance(ctx, ref, paid, status); err != nil {
		return nil, err
	}
	b.PaidAmount = paid
	b.Status = status

	return receipt, nil
}

// GetOrder returns the current snapshot of an order
func (s *LedgerService) GetOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error) {
	order, err := s.repo.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewOrderNotFoundError(ref.String())
	}
	return order, nil
}

// GetRemainingAmount returns total minus paid for an order
func (s *LedgerService) GetRemainingAmount(ctx context.Context, ref entity.OrderRef) (decimal.Decimal, error) {
	order, err := s.GetOrder(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return order.Billing().RemainingAmount(), nil
}

// ListReceipts returns the payment history of an order ordered by issue time
func (s *LedgerService) ListReceipts(ctx context.Context, ref entity.OrderRef, dir repository.SortDirection) ([]entity.PaymentReceipt, error) {
	if _, err := s.GetOrder(ctx, ref); err != nil {
		return nil, err
	}
	return s.repo.ListReceiptsByOrder(ctx, ref, dir)
}

// TotalRemainingAcrossOrders sums the remaining balance over every print job
// and photo session of a client
func (s *LedgerService) TotalRemainingAcrossOrders(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	return s.repo.ClientRemaining(ctx, clientID)
}

// TransitionStatus moves an order to a lifecycle status set by studio staff.
// It runs under the order's lock so it cannot interleave with a payment.
func (s *LedgerService) TransitionStatus(ctx context.Context, ref entity.OrderRef, to enum.OrderStatus) (entity.Billable, error) {
	var updated entity.Billable
	err := s.retry.run(ctx, s.logger, "transition_status", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			order, err := tx.LockOrder(ctx, ref)
			if err != nil {
				return err
			}
			b := order.Billing()
			if b.Status.IsTerminal() {
				return apperror.NewOrderInTerminalStateError(ref.String(), b.Status.String())
			}
			if !ledger.CanTransition(ref.Kind(), b.Status, to) {
				return apperror.NewBadRequestError("Cannot change status from " + b.Status.String() + " to " + to.String())
			}
			if err := tx.UpdateBalance(ctx, ref, b.PaidAmount, to); err != nil {
				return err
			}
			b.Status = to
			updated = order
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed", zap.String("order", ref.String()), zap.String("status", to.String()))
	return updated, nil
}

// DeleteOrder removes an order. Its receipts are kept and detached.
func (s *LedgerService) DeleteOrder(ctx context.Context, ref entity.OrderRef) error {
	err := s.retry.run(ctx, s.logger, "delete_order", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			if _, err := tx.LockOrder(ctx, ref); err != nil {
				return err
			}
			return tx.DeleteOrder(ctx, ref)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.String("order", ref.String()))
	return nil
}

// timestamp returns the current time at the precision the stores keep, so a
// number derived from it can be regenerated from the stored row
func (s *LedgerService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *LedgerService) rejected(ref entity.OrderRef, err error) error {
	kind := apperror.KindOf(err)
	if kind == "" {
		kind = "other"
	}
	s.metrics.PaymentsRejected.WithLabelValues(string(kind)).Inc()
	s.logger.Warn("payment rejected",
		zap.String("order", ref.String()),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return err
}

func (s *LedgerService) recorded(r *PaymentResult) {
	ref := entity.RefOf(r.Order)
	b := r.Order.Billing()
	s.metrics.PaymentsRecorded.WithLabelValues(ref.Kind().String(), string(r.Receipt.PaymentMethod)).Inc()
	s.metrics.AmountRecorded.WithLabelValues(ref.Kind().String()).Add(r.Receipt.PaidAmount.InexactFloat64())
	s.logger.Info("payment recorded",
		zap.String("order", ref.String()),
		zap.String("receipt_number", *r.Receipt.ReceiptNumber),
		zap.String("amount", r.Receipt.PaidAmount.StringFixed(2)),
		zap.String("paid", b.PaidAmount.StringFixed(2)),
		zap.String("remaining", b.RemainingAmount().StringFixed(2)),
		zap.String("status", b.Status.String()))
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/ledger"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const balancePageSize = 500

// BalanceMismatch is an order whose paid amount disagrees with its receipts
type BalanceMismatch struct {
	Order      entity.OrderRef  `json:"order"`
	Status     enum.OrderStatus `json:"status"`
	Total      decimal.Decimal  `json:"total_amount"`
	Paid       decimal.Decimal  `json:"paid_amount"`
	ReceiptSum decimal.Decimal  `json:"receipt_sum"`
	Repaired   bool             `json:"repaired"`
}

// ReconciliationReport summarizes one reconciliation run
type ReconciliationReport struct {
	OrderNumbersRepaired   int               `json:"order_numbers_repaired"`
	ReceiptNumbersRepaired int               `json:"receipt_numbers_repaired"`
	OrdersChecked          int               `json:"orders_checked"`
	Mismatches             []BalanceMismatch `json:"mismatches"`
	StartedAt              time.Time         `json:"started_at"`
	FinishedAt             time.Time         `json:"finished_at"`
}

// ReconciliationService repairs what an interrupted unit of work or a manual
// database edit can leave behind
type ReconciliationService struct {
	repo    repository.LedgerRepository
	logger  *zap.Logger
	metrics *metrics.Ledger
	retry   RetryPolicy
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	repo repository.LedgerRepository,
	logger *zap.Logger,
	m *metrics.Ledger,
	retry RetryPolicy,
) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewLedger(nil)
	}
	return &ReconciliationService{repo: repo, logger: logger, metrics: m, retry: retry}
}

// Run repairs missing numbers and then verifies every balance
func (s *ReconciliationService) Run(ctx context.Context, repair bool) (*ReconciliationReport, error) {
	report := &ReconciliationReport{StartedAt: time.Now().UTC(), Mismatches: []BalanceMismatch{}}

	orders, receipts, err := s.RepairReceiptNumbers(ctx)
	report.OrderNumbersRepaired = orders
	report.ReceiptNumbersRepaired = receipts
	if err != nil {
		return report, err
	}

	checked, mismatches, err := s.VerifyBalances(ctx, repair)
	report.OrdersChecked = checked
	report.Mismatches = append(report.Mismatches, mismatches...)
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		return report, err
	}

	s.logger.Info("ledger reconciled",
		zap.Int("order_numbers_repaired", report.OrderNumbersRepaired),
		zap.Int("receipt_numbers_repaired", report.ReceiptNumbersRepaired),
		zap.Int("orders_checked", report.OrdersChecked),
		zap.Int("mismatches", len(report.Mismatches)),
		zap.Bool("repair", repair))
	return report, nil
}

// RepairReceiptNumbers regenerates the number of every order and receipt
// that has none, from its kind, stored timestamp and id
func (s *ReconciliationService) RepairReceiptNumbers(ctx context.Context) (orders, receipts int, err error) {
	for _, kind := range enum.OrderKinds {
		missing, err := s.repo.ListOrdersMissingNumber(ctx, kind)
		if err != nil {
			return orders, receipts, err
		}
		for _, o := range missing {
			ref := entity.RefOf(o)
			fixed, err := s.repairOrderNumber(ctx, ref)
			if err != nil {
				return orders, receipts, err
			}
			if fixed {
				orders++
				s.metrics.NumbersRepaired.WithLabelValues("order").Inc()
			}
		}
	}

	missing, err := s.repo.ListReceiptsMissingNumber(ctx)
	if err != nil {
		return orders, receipts, err
	}
	for i := range missing {
		if err := s.repairReceiptNumber(ctx, &missing[i]); err != nil {
			return orders, receipts, err
		}
		receipts++
		s.metrics.NumbersRepaired.WithLabelValues("receipt").Inc()
	}
	return orders, receipts, nil
}

func (s *ReconciliationService) repairOrderNumber(ctx context.Context, ref entity.OrderRef) (bool, error) {
	fixed := false
	err := s.retry.run(ctx, s.logger, "repair_order_number", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			order, err := tx.LockOrder(ctx, ref)
			if err != nil {
				return err
			}
			b := order.Billing()
			if b.ReceiptNumber != nil {
				return nil
			}
			number := ledger.OrderNumber(ref.Kind(), b.CreatedAt, b.ID)
			if err := tx.AssignOrderNumber(ctx, ref, number); err != nil {
				return err
			}
			fixed = true
			s.logger.Warn("order number regenerated", zap.String("order", ref.String()), zap.String("receipt_number", number))
			return nil
		})
	})
	if errors.Is(err, apperror.ErrOrderNotFound) {
		return false, nil
	}
	return fixed, err
}

func (s *ReconciliationService) repairReceiptNumber(ctx context.Context, receipt *entity.PaymentReceipt) error {
	number := ledger.ReceiptNumber(receipt.OrderKind, receipt.IssuedAt, receipt.ID)
	err := s.retry.run(ctx, s.logger, "repair_receipt_number", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			if ref, ok := receipt.Order(); ok {
				if _, err := tx.LockOrder(ctx, ref); err != nil && !errors.Is(err, apperror.ErrOrderNotFound) {
					return err
				}
			}
			return tx.AssignReceiptNumber(ctx, receipt.ID, number)
		})
	})
	if err != nil {
		return err
	}
	s.logger.Warn("receipt number regenerated", zap.Uint("receipt_id", receipt.ID), zap.String("receipt_number", number))
	return nil
}

// VerifyBalances compares every order's paid amount with the sum of its
// receipts. With repair set, paid is reset to the receipt sum capped at the
// total and the status is derived again.
func (s *ReconciliationService) VerifyBalances(ctx context.Context, repair bool) (int, []BalanceMismatch, error) {
	checked := 0
	var mismatches []BalanceMismatch

	for _, kind := range enum.OrderKinds {
		var afterID uint
		for {
			page, err := s.repo.ListBalances(ctx, kind, afterID, balancePageSize)
			if err != nil {
				return checked, mismatches, err
			}
			for _, bal := range page {
				checked++
				if bal.PaidAmount.Equal(bal.ReceiptSum) {
					continue
				}
				m := BalanceMismatch{
					Order:      bal.Ref,
					Status:     bal.Status,
					Total:      bal.TotalAmount,
					Paid:       bal.PaidAmount,
					ReceiptSum: bal.ReceiptSum,
				}
				s.logger.Warn("ledger balance mismatch",
					zap.String("order", bal.Ref.String()),
					zap.String("paid", bal.PaidAmount.StringFixed(2)),
					zap.String("receipt_sum", bal.ReceiptSum.StringFixed(2)))
				if repair {
					if err := s.repairBalance(ctx, bal.Ref); err != nil {
						return checked, mismatches, err
					}
					m.Repaired = true
				}
				mismatches = append(mismatches, m)
			}
			if len(page) < balancePageSize {
				break
			}
			afterID = page[len(page)-1].Ref.ID()
		}
	}

	if repair {
		s.metrics.BalanceMismatches.Set(0)
	} else {
		s.metrics.BalanceMismatches.Set(float64(len(mismatches)))
	}
	return checked, mismatches, nil
}

func (s *ReconciliationService) repairBalance(ctx context.Context, ref entity.OrderRef) error {
	return s.retry.run(ctx, s.logger, "repair_balance", func() error {
		return s.repo.RunInTx(ctx, func(tx repository.LedgerTx) error {
			order, err := tx.LockOrder(ctx, ref)
			if err != nil {
				return err
			}
			sum, err := tx.SumReceipts(ctx, ref)
			if err != nil {
				return err
			}
			b := order.Billing()
			paid := decimal.Min(sum, b.TotalAmount)
			if paid.Equal(b.PaidAmount) {
				return nil
			}
			status := ledger.DeriveStatus(ref.Kind(), paid, b.TotalAmount, b.Status)
			return tx.UpdateBalance(ctx, ref, paid, status)
		})
	})
}

// RunPeriodically reconciles every interval until ctx is cancelled
func (s *ReconciliationService) RunPeriodically(ctx context.Context, interval time.Duration, repair bool) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx, repair); err != nil && ctx.Err() == nil {
				s.logger.Error("ledger reconciliation failed", zap.Error(err))
			}
		}
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewLedgerRepository creates the gorm backed ledger store. lockTimeout
// bounds how long a unit of work waits for an order's row lock.
func NewLedgerRepository(db *gorm.DB, lockTimeout time.Duration) domainRepo.LedgerRepository {
	return &ledgerRepository{db: db, lockTimeout: lockTimeout}
}

func tableFor(kind enum.OrderKind) string {
	switch kind {
	case enum.OrderKindPrintJob:
		return entity.PrintJob{}.TableName()
	case enum.OrderKindPhotoSession:
		return entity.PhotoSession{}.TableName()
	}
	return ""
}

func (r *ledgerRepository) RunInTx(ctx context.Context, fn func(tx domainRepo.LedgerTx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) && r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&ledgerTx{db: tx})
	})
	return translateError(err)
}

func (r *ledgerRepository) GetOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error) {
	order := entity.NewBillable(ref.Kind())
	if order == nil {
		return nil, nil
	}
	err := r.db.WithContext(ctx).First(order, ref.ID()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return order, nil
}

func (r *ledgerRepository) ListReceiptsByOrder(ctx context.Context, ref entity.OrderRef, dir domainRepo.SortDirection) ([]entity.PaymentReceipt, error) {
	order := "issued_at ASC, id ASC"
	if dir == domainRepo.SortDesc {
		order = "issued_at DESC, id DESC"
	}
	var receipts []entity.PaymentReceipt
	err := r.db.WithContext(ctx).
		Preload("IssuedBy").
		Where("order_kind = ? AND order_id = ?", ref.Kind(), ref.ID()).
		Order(order).
		Find(&receipts).Error
	return receipts, translateError(err)
}

func (r *ledgerRepository) SumReceiptsByOrder(ctx context.Context, ref entity.OrderRef) (decimal.Decimal, error) {
	sum, err := sumReceipts(r.db.WithContext(ctx), ref)
	return sum, translateError(err)
}

func sumReceipts(db *gorm.DB, ref entity.OrderRef) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.
		Model(&entity.PaymentReceipt{}).
		Select("SUM(paid_amount)").
		Where("order_kind = ? AND order_id = ?", ref.Kind(), ref.ID()).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *ledgerRepository) ClientRemaining(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	query := fmt.Sprintf(
		"SELECT SUM(total_amount - paid_amount) FROM ("+
			"SELECT total_amount, paid_amount FROM %s WHERE client_id = ? "+
			"UNION ALL "+
			"SELECT total_amount, paid_amount FROM %s WHERE client_id = ?) AS client_orders",
		tableFor(enum.OrderKindPrintJob), tableFor(enum.OrderKindPhotoSession))

	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Raw(query, clientID, clientID).Row().Scan(&sum); err != nil {
		return decimal.Zero, translateError(err)
	}
	return sum.Decimal, nil
}

func (r *ledgerRepository) ListOrdersMissingNumber(ctx context.Context, kind enum.OrderKind) ([]entity.Billable, error) {
	return findOrders(r.db.WithContext(ctx).Where("receipt_number IS NULL").Order("id ASC"), kind)
}

func (r *ledgerRepository) ListReceiptsMissingNumber(ctx context.Context) ([]entity.PaymentReceipt, error) {
	var receipts []entity.PaymentReceipt
	err := r.db.WithContext(ctx).
		Where("receipt_number IS NULL").
		Order("id ASC").
		Find(&receipts).Error
	return receipts, translateError(err)
}

func (r *ledgerRepository) ListBalances(ctx context.Context, kind enum.OrderKind, afterID uint, limit int) ([]domainRepo.OrderBalance, error) {
	query := fmt.Sprintf(
		"SELECT o.id, o.status, o.total_amount, o.paid_amount, "+
			"(SELECT SUM(r.paid_amount) FROM payment_receipts r WHERE r.order_kind = ? AND r.order_id = o.id) AS receipt_sum "+
			"FROM %s o WHERE o.id > ? ORDER BY o.id ASC LIMIT ?",
		tableFor(kind))

	rows, err := r.db.WithContext(ctx).Raw(query, kind, afterID, limit).Rows()
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var balances []domainRepo.OrderBalance
	for rows.Next() {
		var (
			id          uint
			status      enum.OrderStatus
			total, paid decimal.Decimal
			sum         decimal.NullDecimal
		)
		if err := rows.Scan(&id, &status, &total, &paid, &sum); err != nil {
			return nil, translateError(err)
		}
		ref, err := entity.NewOrderRef(kind, id)
		if err != nil {
			return nil, err
		}
		balances = append(balances, domainRepo.OrderBalance{
			Ref:         ref,
			Status:      status,
			TotalAmount: total,
			PaidAmount:  paid,
			ReceiptSum:  sum.Decimal,
		})
	}
	return balances, translateError(rows.Err())
}

func findOrders(q *gorm.DB, kind enum.OrderKind) ([]entity.Billable, error) {
	var out []entity.Billable
	switch kind {
	case enum.OrderKindPrintJob:
		var jobs []entity.PrintJob
		if err := q.Find(&jobs).Error; err != nil {
			return nil, translateError(err)
		}
		for i := range jobs {
			out = append(out, &jobs[i])
		}
	case enum.OrderKindPhotoSession:
		var sessions []entity.PhotoSession
		if err := q.Find(&sessions).Error; err != nil {
			return nil, translateError(err)
		}
		for i := range sessions {
			out = append(out, &sessions[i])
		}
	default:
		return nil, fmt.Errorf("unknown order kind %q", kind)
	}
	return out, nil
}

type ledgerTx struct {
	db *gorm.DB
}

func (t *ledgerTx) LockOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error) {
	order := entity.NewBillable(ref.Kind())
	if order == nil {
		return nil, apperror.NewOrderNotFoundError(ref.String())
	}
	err := forUpdate(t.db.WithContext(ctx)).First(order, ref.ID()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewOrderNotFoundError(ref.String())
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (t *ledgerTx) SumReceipts(ctx context.Context, ref entity.OrderRef) (decimal.Decimal, error) {
	return sumReceipts(t.db.WithContext(ctx), ref)
}

func (t *ledgerTx) CreateOrder(ctx context.Context, order entity.Billable) error {
	order.Billing().ReceiptNumber = nil
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (t *ledgerTx) AssignOrderNumber(ctx context.Context, ref entity.OrderRef, number string) error {
	res := t.db.WithContext(ctx).
		Table(tableFor(ref.Kind())).
		Where("id = ? AND receipt_number IS NULL", ref.ID()).
		Updates(map[string]interface{}{"receipt_number": number, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("order %s already has a receipt number", ref)
	}
	return nil
}

func (t *ledgerTx) UpdateBalance(ctx context.Context, ref entity.OrderRef, paid decimal.Decimal, status enum.OrderStatus) error {
	res := t.db.WithContext(ctx).
		Table(tableFor(ref.Kind())).
		Where("id = ?", ref.ID()).
		Updates(map[string]interface{}{"paid_amount": paid, "status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return apperror.NewOrderNotFoundError(ref.String())
	}
	return nil
}

func (t *ledgerTx) CreateReceipt(ctx context.Context, receipt *entity.PaymentReceipt) error {
	receipt.ReceiptNumber = nil
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(receipt).Error
}

func (t *ledgerTx) AssignReceiptNumber(ctx context.Context, id uint, number string) error {
	res := t.db.WithContext(ctx).
		Model(&entity.PaymentReceipt{}).
		Where("id = ? AND receipt_number IS NULL", id).
		Update("receipt_number", number)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("receipt %d already has a number", id)
	}
	return nil
}

func (t *ledgerTx) DeleteOrder(ctx context.Context, ref entity.OrderRef) error {
	db := t.db.WithContext(ctx)
	if err := db.Model(&entity.PaymentReceipt{}).
		Where("order_kind = ? AND order_id = ?", ref.Kind(), ref.ID()).
		Update("order_id", nil).Error; err != nil {
		return err
	}
	res := db.Delete(entity.NewBillable(ref.Kind()), ref.ID())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return apperror.NewOrderNotFoundError(ref.String())
	}
	return nil
}

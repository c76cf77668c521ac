package repository

import (
	"context"
	"errors"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new payment receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) GetByID(ctx context.Context, id uint) (*entity.PaymentReceipt, error) {
	var receipt entity.PaymentReceipt
	err := r.db.WithContext(ctx).Preload("IssuedBy").First(&receipt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetByNumber(ctx context.Context, number string) (*entity.PaymentReceipt, error) {
	var receipt entity.PaymentReceipt
	err := r.db.WithContext(ctx).Preload("IssuedBy").First(&receipt, "receipt_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

// ListWithCursor returns receipts newest first using the id as keyset.
// Fetches limit+1 items to detect if there are more results
func (r *receiptRepository) ListWithCursor(ctx context.Context, params *domainRepo.ReceiptFilterParams) ([]entity.PaymentReceipt, error) {
	var receipts []entity.PaymentReceipt

	params.Cursor.Validate()
	query := r.db.WithContext(ctx).Model(&entity.PaymentReceipt{}).
		Scopes(
			SearchScope(params.ReceiptNumber, "receipt_number"),
			DateRangeScope("issued_at", params.StartDate, params.EndDate),
		)

	if params.OrderKind != nil {
		query = query.Where("order_kind = ?", *params.OrderKind)
	}
	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}
	if params.IssuedByID != nil {
		query = query.Where("issued_by_id = ?", *params.IssuedByID)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}

	err = query.Preload("IssuedBy").
		Order("id DESC").
		Limit(params.Cursor.Limit + 1).
		Find(&receipts).Error

	return receipts, err
}

func (r *receiptRepository) ListByClient(ctx context.Context, clientID uint) ([]entity.PaymentReceipt, error) {
	var receipts []entity.PaymentReceipt
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("issued_at DESC, id DESC").
		Find(&receipts).Error
	return receipts, err
}

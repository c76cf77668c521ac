package service

import (
	"context"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// ReceiptService provides read access to issued payment receipts
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
}

// NewReceiptService creates a new receipt service
func NewReceiptService(receiptRepo repository.ReceiptRepository) *ReceiptService {
	return &ReceiptService{receiptRepo: receiptRepo}
}

// ListReceipts lists receipts newest first using cursor pagination
func (s *ReceiptService) ListReceipts(ctx context.Context, params *repository.ReceiptFilterParams) (*pagination.CursorPaginatedResult[entity.PaymentReceipt], error) {
	params.Cursor.Validate()
	if _, err := params.Cursor.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}

	receipts, err := s.receiptRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewCursorPaginatedResult(receipts, params.Cursor.Limit,
		func(r entity.PaymentReceipt) uint { return r.ID },
	), nil
}

// GetReceipt retrieves a receipt by id
func (s *ReceiptService) GetReceipt(ctx context.Context, id uint) (*entity.PaymentReceipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// GetReceiptByNumber retrieves a receipt by its receipt number
func (s *ReceiptService) GetReceiptByNumber(ctx context.Context, number string) (*entity.PaymentReceipt, error) {
	receipt, err := s.receiptRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

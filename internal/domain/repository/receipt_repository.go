package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// ReceiptFilterParams holds filters for listing payment receipts
type ReceiptFilterParams struct {
	Cursor        *pagination.CursorParams
	OrderKind     *enum.OrderKind
	PaymentMethod *enum.PaymentMethod
	IssuedByID    *uuid.UUID
	ClientID      *uint
	ReceiptNumber string
	StartDate     *time.Time
	EndDate       *time.Time
}

// ReceiptRepository defines read access to payment receipts. Receipts are
// written only by the ledger.
type ReceiptRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.PaymentReceipt, error)
	GetByNumber(ctx context.Context, number string) (*entity.PaymentReceipt, error)
	// ListWithCursor returns up to limit+1 receipts, newest first
	ListWithCursor(ctx context.Context, params *ReceiptFilterParams) ([]entity.PaymentReceipt, error)
	ListByClient(ctx context.Context, clientID uint) ([]entity.PaymentReceipt, error)
}

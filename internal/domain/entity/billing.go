package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// BillingInfo is the billing block shared by every billable order variant.
// PaidAmount and Status are written only by the ledger.
type BillingInfo struct {
	ID            uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID      uint             `gorm:"not null;index" json:"client_id"`
	ReceiptNumber *string          `gorm:"size:50;uniqueIndex" json:"receipt_number"`
	TotalAmount   decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"paid_amount"`
	Status        enum.OrderStatus `gorm:"size:30;not null;index" json:"status"`
	Notes         *string          `gorm:"type:text" json:"notes,omitempty"`
	IssuedByID    *uuid.UUID       `gorm:"type:uuid;index" json:"issued_by_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// RemainingAmount returns total minus paid
func (b *BillingInfo) RemainingAmount() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}

// IsFullyPaid reports whether nothing remains to be paid
func (b *BillingInfo) IsFullyPaid() bool {
	return b.PaidAmount.GreaterThanOrEqual(b.TotalAmount)
}

// Billable is implemented by every order variant the ledger can bill
type Billable interface {
	Kind() enum.OrderKind
	Billing() *BillingInfo
}

// RefOf returns the reference of a billable order
func RefOf(b Billable) OrderRef {
	return OrderRef{kind: b.Kind(), id: b.Billing().ID}
}

// NewBillable returns an empty order of the given variant
func NewBillable(kind enum.OrderKind) Billable {
	switch kind {
	case enum.OrderKindPrintJob:
		return &PrintJob{}
	case enum.OrderKindPhotoSession:
		return &PhotoSession{}
	}
	return nil
}

// CloneBillable returns a shallow copy of b with its own billing block
func CloneBillable(b Billable) Billable {
	switch o := b.(type) {
	case *PrintJob:
		cp := *o
		cp.Payments = nil
		return &cp
	case *PhotoSession:
		cp := *o
		cp.Payments = nil
		return &cp
	}
	return nil
}

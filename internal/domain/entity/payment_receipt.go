package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// PaymentReceipt is the immutable record of one payment against an order.
// OrderID is cleared when the order is deleted; the receipt itself is never
// updated or deleted.
type PaymentReceipt struct {
	ID            uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	ReceiptNumber *string            `gorm:"size:50;uniqueIndex" json:"receipt_number"`
	OrderKind     enum.OrderKind     `gorm:"size:20;not null;index:idx_payment_receipts_order,priority:1" json:"order_kind"`
	OrderID       *uint              `gorm:"index:idx_payment_receipts_order,priority:2" json:"order_id"`
	ClientID      uint               `gorm:"not null;index" json:"client_id"`
	TotalAmount   decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaidAmount    decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"paid_amount"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null;index" json:"payment_method"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	IssuedByID    *uuid.UUID         `gorm:"type:uuid;index" json:"issued_by_id,omitempty"`
	IssuedAt      time.Time          `gorm:"not null;index" json:"issued_at"`

	// Relationships
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
	IssuedBy *User   `gorm:"foreignKey:IssuedByID;constraint:OnDelete:SET NULL" json:"issued_by,omitempty"`
}

// Order returns the order the receipt was issued against, and false once
// that order has been deleted.
func (r *PaymentReceipt) Order() (OrderRef, bool) {
	if r.OrderID == nil {
		return OrderRef{}, false
	}
	return OrderRef{kind: r.OrderKind, id: *r.OrderID}, true
}

// TableName returns the table name for the PaymentReceipt model
func (PaymentReceipt) TableName() string {
	return "payment_receipts"
}

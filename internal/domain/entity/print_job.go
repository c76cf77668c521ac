package entity

import (
	"encoding/json"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// PrintJob is a billable printing order
type PrintJob struct {
	BillingInfo  `gorm:"embedded"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	PrintType    enum.PrintType `gorm:"size:30;not null" json:"print_type"`
	Size         enum.PrintSize `gorm:"size:20;not null" json:"size"`
	Quantity     int            `gorm:"not null;default:1" json:"quantity"`
	DeliveryDate *time.Time     `gorm:"type:date" json:"delivery_date,omitempty"`

	// Relationships
	Client   *Client          `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	IssuedBy *User            `gorm:"foreignKey:IssuedByID;constraint:OnDelete:SET NULL" json:"-"`
	Payments []PaymentReceipt `gorm:"-" json:"payments,omitempty"`
}

func (PrintJob) Kind() enum.OrderKind { return enum.OrderKindPrintJob }

func (p *PrintJob) Billing() *BillingInfo { return &p.BillingInfo }

// MarshalJSON adds the derived remaining amount to the API representation
func (p PrintJob) MarshalJSON() ([]byte, error) {
	type Alias PrintJob
	return json.Marshal(&struct {
		Alias
		Kind            enum.OrderKind  `json:"kind"`
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
	}{
		Alias:           Alias(p),
		Kind:            p.Kind(),
		RemainingAmount: p.RemainingAmount(),
	})
}

// TableName returns the table name for the PrintJob model
func (PrintJob) TableName() string {
	return "print_jobs"
}

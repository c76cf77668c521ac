package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a studio customer that orders are billed to
type Client struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Phone     *string   `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	Email     *string   `gorm:"size:255" json:"email,omitempty"`
	Address   *string   `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed on read, never persisted
	TotalRemainingAmount *decimal.Decimal `gorm:"-" json:"total_remaining_amount,omitempty"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

package entity

import (
	"encoding/json"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// PhotoSession is a billable photography order
type PhotoSession struct {
	BillingInfo    `gorm:"embedded"`
	PackageID      *uint              `gorm:"index" json:"package_id,omitempty"`
	PhotographerID *uint              `gorm:"index" json:"photographer_id,omitempty"`
	SessionDate    time.Time          `gorm:"type:date;not null" json:"session_date"`
	SessionTime    *string            `gorm:"size:5" json:"session_time,omitempty"`
	Location       *string            `gorm:"size:255" json:"location,omitempty"`
	EventType      enum.EventType     `gorm:"size:30;not null" json:"event_type"`
	EditingStatus  enum.EditingStatus `gorm:"size:30;not null;default:not_started" json:"editing_status"`

	FinalDeliveryDate   *time.Time `gorm:"type:date" json:"final_delivery_date,omitempty"`
	NumPhotosDelivered  int        `gorm:"not null;default:0" json:"num_photos_delivered"`
	NumPrintedDelivered int        `gorm:"not null;default:0" json:"num_printed_delivered"`
	AlbumDelivered      bool       `gorm:"not null;default:false" json:"album_delivered"`
	FrameDelivered      bool       `gorm:"not null;default:false" json:"frame_delivered"`
	FinalGalleryLink    *string    `gorm:"size:500" json:"final_gallery_link,omitempty"`
	AgreementNotes      *string    `gorm:"type:text" json:"agreement_notes,omitempty"`

	// Relationships
	Client       *Client             `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	Package      *PhotographyPackage `gorm:"foreignKey:PackageID;constraint:OnDelete:SET NULL" json:"package,omitempty"`
	Photographer *Photographer       `gorm:"foreignKey:PhotographerID;constraint:OnDelete:SET NULL" json:"photographer,omitempty"`
	IssuedBy     *User               `gorm:"foreignKey:IssuedByID;constraint:OnDelete:SET NULL" json:"-"`
	Payments     []PaymentReceipt    `gorm:"-" json:"payments,omitempty"`
}

func (PhotoSession) Kind() enum.OrderKind { return enum.OrderKindPhotoSession }

func (p *PhotoSession) Billing() *BillingInfo { return &p.BillingInfo }

// MarshalJSON adds the derived remaining amount to the API representation
func (p PhotoSession) MarshalJSON() ([]byte, error) {
	type Alias PhotoSession
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

// TableName returns the table name for the PhotoSession model
func (PhotoSession) TableName() string {
	return "photo_sessions"
}

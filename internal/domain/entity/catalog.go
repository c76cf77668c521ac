package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PhotographyPackage is a priced photo session offering
type PhotographyPackage struct {
	ID               uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Description      *string         `gorm:"type:text" json:"description,omitempty"`
	Price            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	NumPhotosDigital int             `gorm:"not null;default:0" json:"num_photos_digital"`
	NumPhotosPrinted int             `gorm:"not null;default:0" json:"num_photos_printed"`
	IncludesAlbum    bool            `gorm:"not null;default:false" json:"includes_album"`
	IncludesFrame    bool            `gorm:"not null;default:false" json:"includes_frame"`
	IsActive         bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName returns the table name for the PhotographyPackage model
func (PhotographyPackage) TableName() string {
	return "photography_packages"
}

// Photographer is a photographer that sessions can be assigned to
type Photographer struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Phone          string    `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email          *string   `gorm:"size:255" json:"email,omitempty"`
	Specialization *string   `gorm:"size:100" json:"specialization,omitempty"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the table name for the Photographer model
func (Photographer) TableName() string {
	return "photographers"
}

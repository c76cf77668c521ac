package request

import "github.com/shopspring/decimal"

// PackageRequest represents a photography package create/update request
type PackageRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description      *string          `json:"description"`
	Price            *decimal.Decimal `json:"price"`
	NumPhotosDigital *int             `json:"num_photos_digital" binding:"omitempty,min=0"`
	NumPhotosPrinted *int             `json:"num_photos_printed" binding:"omitempty,min=0"`
	IncludesAlbum    *bool            `json:"includes_album"`
	IncludesFrame    *bool            `json:"includes_frame"`
	IsActive         *bool            `json:"is_active"`
}

// PhotographerRequest represents a photographer create/update request
type PhotographerRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
	IsActive       *bool   `json:"is_active"`
}

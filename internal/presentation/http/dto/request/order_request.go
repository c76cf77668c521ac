package request

import "encoding/json"

// CreatePrintJobRequest represents a print job creation request with an
// optional initial deposit
type CreatePrintJobRequest struct {
	ClientID       uint            `json:"client_id" binding:"required,min=1"`
	Title          string          `json:"title" binding:"required,max=255"`
	Description    *string         `json:"description"`
	PrintType      string          `json:"print_type" binding:"required"`
	Size           string          `json:"size" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required,min=1"`
	DeliveryDate   *string         `json:"delivery_date"`
	TotalAmount    json.RawMessage `json:"total_amount" binding:"required"`
	InitialPayment json.RawMessage `json:"initial_payment"`
	PaymentMethod  string          `json:"payment_method"`
	Notes          *string         `json:"notes"`
}

// UpdatePrintJobRequest represents a print job update request. Billing
// fields cannot be changed.
type UpdatePrintJobRequest struct {
	Title        *string `json:"title" binding:"omitempty,max=255"`
	Description  *string `json:"description"`
	PrintType    *string `json:"print_type"`
	Size         *string `json:"size"`
	Quantity     *int    `json:"quantity" binding:"omitempty,min=1"`
	DeliveryDate *string `json:"delivery_date"`
	Notes        *string `json:"notes"`
}

// CreatePhotoSessionRequest represents a photo session booking request
type CreatePhotoSessionRequest struct {
	ClientID       uint            `json:"client_id" binding:"required,min=1"`
	PackageID      *uint           `json:"package_id"`
	PhotographerID *uint           `json:"photographer_id"`
	SessionDate    string          `json:"session_date" binding:"required"`
	SessionTime    *string         `json:"session_time"`
	Location       *string         `json:"location"`
	EventType      string          `json:"event_type" binding:"required"`
	AgreementNotes *string         `json:"agreement_notes"`
	TotalAmount    json.RawMessage `json:"total_amount"`
	InitialPayment json.RawMessage `json:"initial_payment"`
	PaymentMethod  string          `json:"payment_method"`
	Notes          *string         `json:"notes"`
}

// UpdatePhotoSessionRequest represents a photo session update request
type UpdatePhotoSessionRequest struct {
	PackageID           *uint   `json:"package_id"`
	PhotographerID      *uint   `json:"photographer_id"`
	SessionDate         *string `json:"session_date"`
	SessionTime         *string `json:"session_time"`
	Location            *string `json:"location"`
	EventType           *string `json:"event_type"`
	EditingStatus       *string `json:"editing_status"`
	FinalDeliveryDate   *string `json:"final_delivery_date"`
	NumPhotosDelivered  *int    `json:"num_photos_delivered" binding:"omitempty,min=0"`
	NumPrintedDelivered *int    `json:"num_printed_delivered" binding:"omitempty,min=0"`
	AlbumDelivered      *bool   `json:"album_delivered"`
	FrameDelivered      *bool   `json:"frame_delivered"`
	FinalGalleryLink    *string `json:"final_gallery_link" binding:"omitempty,url"`
	AgreementNotes      *string `json:"agreement_notes"`
	Notes               *string `json:"notes"`
}

// RecordPaymentRequest represents a payment against an order. Amount is
// kept raw so a malformed value is reported as an invalid amount.
type RecordPaymentRequest struct {
	Amount        json.RawMessage `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Notes         *string         `json:"notes"`
}

// ChangeStatusRequest represents a manual lifecycle transition
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

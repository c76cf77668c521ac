package request

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=20"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

// UpdateClientRequest represents a client update request
type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=20"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

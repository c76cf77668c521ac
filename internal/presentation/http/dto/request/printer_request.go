package request

// PrintReceiptRequest is the request body for printing a payment receipt.
type PrintReceiptRequest struct {
	ReceiptID uint `json:"receipt_id" binding:"required,min=1"`
}

// PrintOrderRequest is the request body for printing an order statement or
// final invoice.
type PrintOrderRequest struct {
	Kind string `json:"kind" binding:"required,oneof=print_job photo_session"`
	ID   uint   `json:"id" binding:"required,min=1"`
}

// ReconcileRequest controls an on-demand reconciliation run
type ReconcileRequest struct {
	Repair bool `json:"repair"`
}

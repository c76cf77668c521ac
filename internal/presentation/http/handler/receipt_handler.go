package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// ReceiptHandler handles read access to payment receipts
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// List handles listing receipts newest first with cursor pagination
func (h *ReceiptHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))

	params := &repository.ReceiptFilterParams{
		Cursor: &pagination.CursorParams{
			Cursor: c.Query("cursor"),
			Limit:  limit,
		},
		ClientID:      queryUint(c, "client_id"),
		ReceiptNumber: c.Query("receipt_number"),
		StartDate:     queryDate(c, "start_date"),
		EndDate:       queryDate(c, "end_date"),
	}

	if v := c.Query("order_kind"); v != "" {
		kind, err := enum.ParseOrderKind(v)
		if err != nil {
			response.BadRequest(c, "Invalid order kind")
			return
		}
		params.OrderKind = &kind
	}
	if v := c.Query("payment_method"); v != "" {
		method := enum.PaymentMethod(v)
		if !method.IsValid() {
			response.BadRequest(c, "Invalid payment method")
			return
		}
		params.PaymentMethod = &method
	}
	if v := c.Query("issued_by"); v != "" {
		issuer, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "Invalid issued_by user ID")
			return
		}
		params.IssuedByID = &issuer
	}

	result, err := h.receiptService.ListReceipts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", result)
}

// Get handles getting a receipt by id
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// GetByNumber handles getting a receipt by its receipt number
func (h *ReceiptHandler) GetByNumber(c *gin.Context) {
	receipt, err := h.receiptService.GetReceiptByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

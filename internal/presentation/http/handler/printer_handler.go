package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/request"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus(c.Request.Context()))
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	doc, err := h.printerService.TestPrint(c.Request.Context())
	printed(c, "Test page sent to printer", doc, err)
}

// PrintReceipt prints a payment receipt.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	doc, err := h.printerService.PrintReceipt(c.Request.Context(), req.ReceiptID)
	printed(c, "Receipt sent to printer", doc, err)
}

// PrintStatement prints an order with its payment history.
func (h *PrinterHandler) PrintStatement(c *gin.Context) {
	ref, ok := bindOrderRef(c)
	if !ok {
		return
	}

	doc, err := h.printerService.PrintStatement(c.Request.Context(), ref)
	printed(c, "Statement sent to printer", doc, err)
}

// PrintFinalInvoice prints the final invoice of a fully paid order.
func (h *PrinterHandler) PrintFinalInvoice(c *gin.Context) {
	ref, ok := bindOrderRef(c)
	if !ok {
		return
	}

	doc, err := h.printerService.PrintFinalInvoice(c.Request.Context(), ref)
	printed(c, "Final invoice sent to printer", doc, err)
}

func bindOrderRef(c *gin.Context) (entity.OrderRef, bool) {
	var req request.PrintOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return entity.OrderRef{}, false
	}

	ref, err := entity.NewOrderRef(enum.OrderKind(req.Kind), req.ID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return entity.OrderRef{}, false
	}
	return ref, true
}

// printed answers a print request. A document that was composed but not
// printed is still returned, with the failure as a warning.
func printed(c *gin.Context, message string, doc *entity.Document, err error) {
	if doc == nil {
		response.Error(c, err)
		return
	}
	if err != nil {
		response.OK(c, "Document prepared but not printed", gin.H{
			"document": doc,
			"warning":  err.Error(),
		})
		return
	}
	response.OK(c, message, gin.H{"document": doc})
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/ledger"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/request"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

// orderLedger serves the payment endpoints shared by print jobs and photo
// sessions. The order kind comes from the route, the id from the path.
type orderLedger struct {
	kind    enum.OrderKind
	ledger  *service.LedgerService
	printer *service.PrinterService
	logger  *zap.Logger
}

// paymentResponse is the body of a successful ledger write. PrintWarning is
// set when the receipt was recorded but could not be printed.
type paymentResponse struct {
	*service.PaymentResult
	PrintWarning string `json:"print_warning,omitempty"`
}

func (l *orderLedger) ref(c *gin.Context) (entity.OrderRef, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid "+l.kind.Label()+" ID")
		return entity.OrderRef{}, false
	}
	ref, err := entity.NewOrderRef(l.kind, id)
	if err != nil {
		response.BadRequest(c, err.Error())
		return entity.OrderRef{}, false
	}
	return ref, true
}

// RecordPayment handles POST /:id/payments. With ?print=true the receipt is
// printed once the payment is committed.
func (l *orderLedger) RecordPayment(c *gin.Context) {
	ref, ok := l.ref(c)
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	amount, err := ledger.ParseAmountJSON(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := l.ledger.RecordPayment(c.Request.Context(), service.RecordPaymentInput{
		Order:      ref,
		Amount:     amount,
		Method:     enum.PaymentMethod(req.PaymentMethod),
		Notes:      req.Notes,
		ActingUser: GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", l.withPrint(c, result))
}

// Remaining handles GET /:id/remaining
func (l *orderLedger) Remaining(c *gin.Context) {
	ref, ok := l.ref(c)
	if !ok {
		return
	}

	remaining, err := l.ledger.GetRemainingAmount(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Remaining amount retrieved successfully", gin.H{
		"order":            ref,
		"remaining_amount": remaining,
	})
}

// Receipts handles GET /:id/receipts?order=asc|desc
func (l *orderLedger) Receipts(c *gin.Context) {
	ref, ok := l.ref(c)
	if !ok {
		return
	}

	receipts, err := l.ledger.ListReceipts(c.Request.Context(), ref, repository.ParseSortDirection(c.Query("order")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", receipts)
}

// withPrint prints the receipt of result when the request asked for it.
// The ledger write has already committed, so a print failure only adds a
// warning.
func (l *orderLedger) withPrint(c *gin.Context, result *service.PaymentResult) paymentResponse {
	out := paymentResponse{PaymentResult: result}
	if !queryBool(c, "print") || result.Receipt == nil || l.printer == nil {
		return out
	}

	if _, err := l.printer.PrintReceipt(c.Request.Context(), result.Receipt.ID); err != nil {
		l.logger.Warn("receipt recorded but not printed",
			zap.Uint("receipt_id", result.Receipt.ID),
			zap.Error(err),
		)
		out.PrintWarning = err.Error()
	}
	return out
}

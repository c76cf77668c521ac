package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/request"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

// PrintJobHandler handles print job HTTP requests
type PrintJobHandler struct {
	*orderLedger
	printJobService *service.PrintJobService
}

// NewPrintJobHandler creates a new print job handler
func NewPrintJobHandler(
	printJobService *service.PrintJobService,
	ledger *service.LedgerService,
	printer *service.PrinterService,
	logger *zap.Logger,
) *PrintJobHandler {
	return &PrintJobHandler{
		orderLedger: &orderLedger{
			kind:    enum.OrderKindPrintJob,
			ledger:  ledger,
			printer: printer,
			logger:  logger,
		},
		printJobService: printJobService,
	}
}

// List handles listing print jobs
func (h *PrintJobHandler) List(c *gin.Context) {
	params := &repository.PrintJobFilterParams{
		OrderFilterParams: repository.OrderFilterParams{
			Pagination: pageParams(c),
			Search:     c.Query("search"),
			ClientID:   queryUint(c, "client_id"),
			StartDate:  queryDate(c, "start_date"),
			EndDate:    queryDate(c, "end_date"),
			SortBy:     c.Query("sort_by"),
			SortOrder:  c.Query("sort_order"),
		},
	}

	if v := c.Query("status"); v != "" {
		status := enum.OrderStatus(v)
		params.Status = &status
	}
	if v := c.Query("print_type"); v != "" {
		printType := enum.PrintType(v)
		params.PrintType = &printType
	}
	if v := c.Query("size"); v != "" {
		size := enum.PrintSize(v)
		params.Size = &size
	}

	result, err := h.printJobService.ListPrintJobs(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Print jobs retrieved successfully", result)
}

// Create handles creating a print job with an optional initial deposit
func (h *PrintJobHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreatePrintJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	total, deposit, ok := parseBilling(c, req.TotalAmount, req.InitialPayment)
	if !ok {
		return
	}

	deliveryDate, err := parseOptionalDate(req.DeliveryDate)
	if err != nil {
		response.BadRequest(c, "Invalid delivery date, expected YYYY-MM-DD")
		return
	}

	result, err := h.printJobService.CreatePrintJob(c.Request.Context(), &service.CreatePrintJobInput{
		UserID:         *userID,
		ClientID:       req.ClientID,
		Title:          req.Title,
		Description:    req.Description,
		PrintType:      enum.PrintType(req.PrintType),
		Size:           enum.PrintSize(req.Size),
		Quantity:       req.Quantity,
		DeliveryDate:   deliveryDate,
		TotalAmount:    total,
		InitialPayment: deposit,
		PaymentMethod:  enum.PaymentMethod(req.PaymentMethod),
		Notes:          req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Print job created successfully", h.withPrint(c, result))
}

// Get handles getting a single print job with its payments
func (h *PrintJobHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid print job ID")
		return
	}

	job, err := h.printJobService.GetPrintJob(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Print job retrieved successfully", job)
}

// Update handles updating the descriptive fields of a print job
func (h *PrintJobHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid print job ID")
		return
	}

	var req request.UpdatePrintJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	deliveryDate, err := parseOptionalDate(req.DeliveryDate)
	if err != nil {
		response.BadRequest(c, "Invalid delivery date, expected YYYY-MM-DD")
		return
	}

	input := &service.UpdatePrintJobInput{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Quantity:     req.Quantity,
		DeliveryDate: deliveryDate,
		Notes:        req.Notes,
	}
	if req.PrintType != nil {
		printType := enum.PrintType(*req.PrintType)
		input.PrintType = &printType
	}
	if req.Size != nil {
		size := enum.PrintSize(*req.Size)
		input.Size = &size
	}

	job, err := h.printJobService.UpdatePrintJob(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Print job updated successfully", job)
}

// ChangeStatus handles a manual lifecycle transition
func (h *PrintJobHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid print job ID")
		return
	}

	var req request.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	job, err := h.printJobService.ChangeStatus(c.Request.Context(), id, enum.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Print job status updated successfully", job)
}

// Delete handles deleting a print job. Its receipts stay on record.
func (h *PrintJobHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid print job ID")
		return
	}

	if err := h.printJobService.DeletePrintJob(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Print job deleted successfully", nil)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/request"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

// PhotoSessionHandler handles photo session HTTP requests
type PhotoSessionHandler struct {
	*orderLedger
	sessionService *service.PhotoSessionService
}

// NewPhotoSessionHandler creates a new photo session handler
func NewPhotoSessionHandler(
	sessionService *service.PhotoSessionService,
	ledger *service.LedgerService,
	printer *service.PrinterService,
	logger *zap.Logger,
) *PhotoSessionHandler {
	return &PhotoSessionHandler{
		orderLedger: &orderLedger{
			kind:    enum.OrderKindPhotoSession,
			ledger:  ledger,
			printer: printer,
			logger:  logger,
		},
		sessionService: sessionService,
	}
}

// List handles listing photo sessions
func (h *PhotoSessionHandler) List(c *gin.Context) {
	params := &repository.PhotoSessionFilterParams{
		OrderFilterParams: repository.OrderFilterParams{
			Pagination: pageParams(c),
			Search:     c.Query("search"),
			ClientID:   queryUint(c, "client_id"),
			StartDate:  queryDate(c, "start_date"),
			EndDate:    queryDate(c, "end_date"),
			SortBy:     c.Query("sort_by"),
			SortOrder:  c.Query("sort_order"),
		},
		PhotographerID: queryUint(c, "photographer_id"),
		PackageID:      queryUint(c, "package_id"),
	}

	if v := c.Query("status"); v != "" {
		status := enum.OrderStatus(v)
		params.Status = &status
	}
	if v := c.Query("event_type"); v != "" {
		eventType := enum.EventType(v)
		params.EventType = &eventType
	}
	if v := c.Query("editing_status"); v != "" {
		editing := enum.EditingStatus(v)
		params.EditingStatus = &editing
	}

	result, err := h.sessionService.ListPhotoSessions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Photo sessions retrieved successfully", result)
}

// Create handles booking a photo session with an optional initial deposit
func (h *PhotoSessionHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreatePhotoSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	total, deposit, ok := parseBilling(c, req.TotalAmount, req.InitialPayment)
	if !ok {
		return
	}

	sessionDate, err := time.Parse(dateLayout, req.SessionDate)
	if err != nil {
		response.BadRequest(c, "Invalid session date, expected YYYY-MM-DD")
		return
	}

	result, err := h.sessionService.CreatePhotoSession(c.Request.Context(), &service.CreatePhotoSessionInput{
		UserID:         *userID,
		ClientID:       req.ClientID,
		PackageID:      req.PackageID,
		PhotographerID: req.PhotographerID,
		SessionDate:    sessionDate,
		SessionTime:    req.SessionTime,
		Location:       req.Location,
		EventType:      enum.EventType(req.EventType),
		AgreementNotes: req.AgreementNotes,
		TotalAmount:    total,
		InitialPayment: deposit,
		PaymentMethod:  enum.PaymentMethod(req.PaymentMethod),
		Notes:          req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Photo session created successfully", h.withPrint(c, result))
}

// Get handles getting a single photo session with its payments
func (h *PhotoSessionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photo session ID")
		return
	}

	session, err := h.sessionService.GetPhotoSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Photo session retrieved successfully", session)
}

// Update handles updating scheduling and delivery details
func (h *PhotoSessionHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photo session ID")
		return
	}

	var req request.UpdatePhotoSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sessionDate, err := parseOptionalDate(req.SessionDate)
	if err != nil {
		response.BadRequest(c, "Invalid session date, expected YYYY-MM-DD")
		return
	}
	finalDelivery, err := parseOptionalDate(req.FinalDeliveryDate)
	if err != nil {
		response.BadRequest(c, "Invalid final delivery date, expected YYYY-MM-DD")
		return
	}

	input := &service.UpdatePhotoSessionInput{
		ID:                  id,
		PackageID:           req.PackageID,
		PhotographerID:      req.PhotographerID,
		SessionDate:         sessionDate,
		SessionTime:         req.SessionTime,
		Location:            req.Location,
		FinalDeliveryDate:   finalDelivery,
		NumPhotosDelivered:  req.NumPhotosDelivered,
		NumPrintedDelivered: req.NumPrintedDelivered,
		AlbumDelivered:      req.AlbumDelivered,
		FrameDelivered:      req.FrameDelivered,
		FinalGalleryLink:    req.FinalGalleryLink,
		AgreementNotes:      req.AgreementNotes,
		Notes:               req.Notes,
	}
	if req.EventType != nil {
		eventType := enum.EventType(*req.EventType)
		input.EventType = &eventType
	}
	if req.EditingStatus != nil {
		editing := enum.EditingStatus(*req.EditingStatus)
		input.EditingStatus = &editing
	}

	session, err := h.sessionService.UpdatePhotoSession(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Photo session updated successfully", session)
}

// ChangeStatus handles a manual lifecycle transition
func (h *PhotoSessionHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photo session ID")
		return
	}

	var req request.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	session, err := h.sessionService.ChangeStatus(c.Request.Context(), id, enum.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Photo session status updated successfully", session)
}

// Delete handles deleting a photo session. Its receipts stay on record.
func (h *PhotoSessionHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photo session ID")
		return
	}

	if err := h.sessionService.DeletePhotoSession(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Photo session deleted successfully", nil)
}

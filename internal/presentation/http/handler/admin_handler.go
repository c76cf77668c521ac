package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/request"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
)

// AdminHandler exposes ledger maintenance to managers
type AdminHandler struct {
	reconciliation *service.ReconciliationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(reconciliation *service.ReconciliationService) *AdminHandler {
	return &AdminHandler{reconciliation: reconciliation}
}

// Reconcile regenerates missing receipt numbers and checks every order's
// paid amount against its receipts. With "repair": true mismatches are fixed.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	var req request.ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	report, err := h.reconciliation.Run(c.Request.Context(), req.Repair)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reconciliation completed", report)
}

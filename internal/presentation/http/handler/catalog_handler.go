package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/application/service"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/request"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
)

// CatalogHandler handles photography packages and photographers
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func packageInput(req *request.PackageRequest) *service.PackageInput {
	return &service.PackageInput{
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		NumPhotosDigital: req.NumPhotosDigital,
		NumPhotosPrinted: req.NumPhotosPrinted,
		IncludesAlbum:    req.IncludesAlbum,
		IncludesFrame:    req.IncludesFrame,
		IsActive:         req.IsActive,
	}
}

func photographerInput(req *request.PhotographerRequest) *service.PhotographerInput {
	return &service.PhotographerInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Specialization: req.Specialization,
		IsActive:       req.IsActive,
	}
}

// ListPackages lists packages; ?active=true hides deactivated ones
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	packages, err := h.catalogService.ListPackages(c.Request.Context(), queryBool(c, "active"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Packages retrieved successfully", packages)
}

func (h *CatalogHandler) GetPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid package ID")
		return
	}

	pkg, err := h.catalogService.GetPackage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Package retrieved successfully", pkg)
}

func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	var req request.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	pkg, err := h.catalogService.CreatePackage(c.Request.Context(), packageInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Package created successfully", pkg)
}

func (h *CatalogHandler) UpdatePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid package ID")
		return
	}

	var req request.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	pkg, err := h.catalogService.UpdatePackage(c.Request.Context(), id, packageInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Package updated successfully", pkg)
}

// DeactivatePackage hides a package from new bookings; existing sessions keep it
func (h *CatalogHandler) DeactivatePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid package ID")
		return
	}

	if err := h.catalogService.DeactivatePackage(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Package deactivated successfully", nil)
}

func (h *CatalogHandler) ListPhotographers(c *gin.Context) {
	photographers, err := h.catalogService.ListPhotographers(c.Request.Context(), queryBool(c, "active"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Photographers retrieved successfully", photographers)
}

func (h *CatalogHandler) GetPhotographer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photographer ID")
		return
	}

	p, err := h.catalogService.GetPhotographer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Photographer retrieved successfully", p)
}

func (h *CatalogHandler) CreatePhotographer(c *gin.Context) {
	var req request.PhotographerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.catalogService.CreatePhotographer(c.Request.Context(), photographerInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Photographer created successfully", p)
}

func (h *CatalogHandler) UpdatePhotographer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photographer ID")
		return
	}

	var req request.PhotographerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.catalogService.UpdatePhotographer(c.Request.Context(), id, photographerInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Photographer updated successfully", p)
}

func (h *CatalogHandler) DeactivatePhotographer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid photographer ID")
		return
	}

	if err := h.catalogService.DeactivatePhotographer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Photographer deactivated successfully", nil)
}

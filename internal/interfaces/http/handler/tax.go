package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/invoicing/backend/internal/application/catalog"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// TaxHandler handles tax rate API endpoints
type TaxHandler struct {
	BaseHandler
	taxService *catalogapp.TaxService
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(taxService *catalogapp.TaxService) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
	}
}

// Create creates a named tax rate. Marking it default clears the previous
// default.
func (h *TaxHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	var req catalogapp.CreateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tax, err := h.taxService.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tax)
}

// GetByID retrieves a tax rate by its ID
func (h *TaxHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	taxID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax ID format")
		return
	}

	tax, err := h.taxService.GetByID(c.Request.Context(), orgID, taxID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tax)
}

// List retrieves all tax rates for the organization, default first
func (h *TaxHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	taxes, err := h.taxService.List(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, taxes)
}

// Update updates an existing tax rate
func (h *TaxHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	taxID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax ID format")
		return
	}

	var req catalogapp.UpdateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tax, err := h.taxService.Update(c.Request.Context(), orgID, taxID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tax)
}

// Delete deletes a tax rate. Existing invoice lines keep their copied rate.
func (h *TaxHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	taxID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax ID format")
		return
	}

	if err := h.taxService.Delete(c.Request.Context(), orgID, taxID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

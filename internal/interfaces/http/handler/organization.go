package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/invoicing/backend/internal/application/identity"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// Logo uploads are small images; anything bigger is rejected before
// reading the file into memory.
const maxLogoSize = 2 << 20

// OrganizationHandler handles organization settings endpoints. All routes
// operate on the caller's own organization; there is no cross-organization
// surface.
type OrganizationHandler struct {
	BaseHandler
	orgService *identityapp.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *identityapp.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// Get retrieves the caller's organization settings
func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	org, err := h.orgService.GetByID(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, org)
}

// Update applies a partial settings update
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	var req identityapp.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, org)
}

// UploadLogo stores the organization logo and records its public URL
func (h *OrganizationHandler) UploadLogo(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not resolved from token")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		h.BadRequest(c, "Missing logo file")
		return
	}
	if fileHeader.Size > maxLogoSize {
		h.BadRequest(c, "Logo file exceeds maximum allowed size")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.BadRequest(c, "Logo must be an image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxLogoSize))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}

	org, err := h.orgService.UploadLogo(c.Request.Context(), orgID, data, contentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, org)
}

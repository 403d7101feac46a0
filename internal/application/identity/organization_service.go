package identity

import (
	"context"
	"fmt"

	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// LogoStorage persists uploaded organization logos
type LogoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

const maxLogoSize = 2 << 20 // 2 MiB

// OrganizationService handles organization settings
type OrganizationService struct {
	orgRepo identity.OrganizationRepository
	storage LogoStorage
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgRepo identity.OrganizationRepository, storage LogoStorage) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, storage: storage}
}

// GetByID retrieves the organization settings
func (s *OrganizationService) GetByID(ctx context.Context, orgID uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	resp := ToOrganizationResponse(org)
	return &resp, nil
}

// Update applies a partial settings update. Changing the invoice prefix
// affects only invoices finalized afterwards.
func (s *OrganizationService) Update(ctx context.Context, orgID uuid.UUID, req UpdateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := org.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Currency != nil {
		if err := org.SetCurrency(valueobject.Currency(*req.Currency)); err != nil {
			return nil, err
		}
	}
	if req.InvoicePrefix != nil {
		if err := org.SetInvoicePrefix(*req.InvoicePrefix); err != nil {
			return nil, err
		}
	}
	if req.DefaultTaxRate != nil {
		if err := org.SetDefaultTaxRate(*req.DefaultTaxRate); err != nil {
			return nil, err
		}
	}
	if req.DefaultPaymentTerms != nil {
		if err := org.SetDefaultPaymentTerms(*req.DefaultPaymentTerms); err != nil {
			return nil, err
		}
	}
	if req.AddressLine1 != nil {
		org.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		org.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		org.City = *req.City
	}
	if req.State != nil {
		org.State = *req.State
	}
	if req.PostalCode != nil {
		org.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		org.Country = *req.Country
	}
	if req.Email != nil {
		org.Email = *req.Email
	}
	if req.Phone != nil {
		org.Phone = *req.Phone
	}
	if req.Website != nil {
		org.Website = *req.Website
	}
	if req.TaxID != nil {
		org.TaxID = *req.TaxID
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	resp := ToOrganizationResponse(org)
	return &resp, nil
}

// UploadLogo stores the logo and records its URL on the organization
func (s *OrganizationService) UploadLogo(ctx context.Context, orgID uuid.UUID, data []byte, contentType string) (*OrganizationResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewValidationError("logo", "file is empty")
	}
	if len(data) > maxLogoSize {
		return nil, shared.NewValidationError("logo", "file exceeds 2MB")
	}
	var ext string
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/jpeg":
		ext = "jpg"
	case "image/svg+xml":
		ext = "svg"
	default:
		return nil, shared.NewValidationError("logo", "must be a PNG, JPEG or SVG image")
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("logos/%s/logo.%s", orgID, ext)
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}
	org.SetLogoURL(url)

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	resp := ToOrganizationResponse(org)
	return &resp, nil
}

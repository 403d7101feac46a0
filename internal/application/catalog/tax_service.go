package catalog

import (
	"context"

	"github.com/invoicing/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// TaxService handles named tax rate operations
type TaxService struct {
	taxRepo catalog.TaxRepository
}

// NewTaxService creates a new TaxService
func NewTaxService(taxRepo catalog.TaxRepository) *TaxService {
	return &TaxService{taxRepo: taxRepo}
}

// Create creates a named tax rate. Marking it default clears the previous
// default first.
func (s *TaxService) Create(ctx context.Context, orgID uuid.UUID, req CreateTaxRequest) (*TaxResponse, error) {
	tax, err := catalog.NewTax(orgID, req.Name, req.Rate)
	if err != nil {
		return nil, err
	}
	tax.Description = req.Description

	if req.IsDefault {
		if err := s.taxRepo.ClearDefaultForOrg(ctx, orgID); err != nil {
			return nil, err
		}
		tax.MarkDefault()
	}

	if err := s.taxRepo.Save(ctx, tax); err != nil {
		return nil, err
	}
	resp := ToTaxResponse(tax)
	return &resp, nil
}

// GetByID retrieves a tax rate
func (s *TaxService) GetByID(ctx context.Context, orgID, taxID uuid.UUID) (*TaxResponse, error) {
	tax, err := s.taxRepo.FindByIDForOrg(ctx, orgID, taxID)
	if err != nil {
		return nil, err
	}
	resp := ToTaxResponse(tax)
	return &resp, nil
}

// List retrieves all tax rates of the organization
func (s *TaxService) List(ctx context.Context, orgID uuid.UUID) ([]TaxResponse, error) {
	taxes, err := s.taxRepo.FindAllForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	items := make([]TaxResponse, 0, len(taxes))
	for i := range taxes {
		items = append(items, ToTaxResponse(&taxes[i]))
	}
	return items, nil
}

// Update applies a partial update to a tax rate
func (s *TaxService) Update(ctx context.Context, orgID, taxID uuid.UUID, req UpdateTaxRequest) (*TaxResponse, error) {
	tax, err := s.taxRepo.FindByIDForOrg(ctx, orgID, taxID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tax.Name = *req.Name
	}
	if req.Rate != nil {
		if err := tax.SetRate(*req.Rate); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		tax.Description = *req.Description
	}
	if req.IsDefault != nil {
		if *req.IsDefault {
			if err := s.taxRepo.ClearDefaultForOrg(ctx, orgID); err != nil {
				return nil, err
			}
			tax.MarkDefault()
		} else {
			tax.ClearDefault()
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			tax.IsActive = true
		} else {
			tax.Archive()
		}
	}

	if err := s.taxRepo.Save(ctx, tax); err != nil {
		return nil, err
	}
	resp := ToTaxResponse(tax)
	return &resp, nil
}

// Delete removes a tax definition; line items copied its rate, so history
// is unaffected
func (s *TaxService) Delete(ctx context.Context, orgID, taxID uuid.UUID) error {
	if _, err := s.taxRepo.FindByIDForOrg(ctx, orgID, taxID); err != nil {
		return err
	}
	return s.taxRepo.DeleteForOrg(ctx, orgID, taxID)
}

package persistence

import (
	"context"
	"errors"

	"github.com/invoicing/backend/internal/domain/catalog"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxRepository implements TaxRepository using GORM
type GormTaxRepository struct {
	db *gorm.DB
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

// FindByIDForOrg finds a tax by ID within an organization
func (r *GormTaxRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*catalog.Tax, error) {
	var tax catalog.Tax
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&tax).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tax, nil
}

// FindAllForOrg lists all taxes for an organization, default first
func (r *GormTaxRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID) ([]catalog.Tax, error) {
	var taxes []catalog.Tax
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("is_default DESC, name ASC").
		Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}

// Save creates or updates a tax
func (r *GormTaxRepository) Save(ctx context.Context, tax *catalog.Tax) error {
	return r.db.WithContext(ctx).Save(tax).Error
}

// DeleteForOrg deletes a tax definition. Line items copied the rate value,
// so existing invoices are unaffected.
func (r *GormTaxRepository) DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&catalog.Tax{}, "organization_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearDefaultForOrg removes the default flag from every tax of the organization
func (r *GormTaxRepository) ClearDefaultForOrg(ctx context.Context, orgID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&catalog.Tax{}).
		Where("organization_id = ? AND is_default = ?", orgID, true).
		Update("is_default", false).Error
}

// Ensure GormTaxRepository implements TaxRepository
var _ catalog.TaxRepository = (*GormTaxRepository)(nil)

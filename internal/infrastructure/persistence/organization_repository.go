package persistence

import (
	"context"
	"errors"

	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var org identity.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// AllocateInvoiceSequence atomically claims the next sequence value for an
// organization. The single UPDATE serializes concurrent callers on the row
// lock, so two sends can never be handed the same number.
func (r *GormOrganizationRepository) AllocateInvoiceSequence(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var allocated int64
	err := r.db.WithContext(ctx).
		Raw(`UPDATE organizations
		     SET invoice_next_number = invoice_next_number + 1, updated_at = NOW()
		     WHERE id = ?
		     RETURNING invoice_next_number - 1`, orgID).
		Scan(&allocated).Error
	if err != nil {
		return 0, err
	}
	if allocated == 0 {
		// RETURNING produced no row, the organization does not exist
		return 0, shared.ErrNotFound
	}
	return allocated, nil
}

// Ensure GormOrganizationRepository implements OrganizationRepository
var _ identity.OrganizationRepository = (*GormOrganizationRepository)(nil)

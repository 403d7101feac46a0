package catalog

import (
	"context"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository persists catalog products scoped to an organization
type ProductRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Product, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error
}

// TaxRepository persists named tax rates scoped to an organization
type TaxRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Tax, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID) ([]Tax, error)
	Save(ctx context.Context, tax *Tax) error
	DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error

	// ClearDefaultForOrg removes the default flag from every tax of the
	// organization, so MarkDefault keeps at most one default
	ClearDefaultForOrg(ctx context.Context, orgID uuid.UUID) error
}

package catalog

import (
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tax is a named rate defined at the organization level. It is a selection
// convenience only: line items copy the rate value and never reference the
// Tax row afterwards.
type Tax struct {
	shared.OrgAggregateRoot
	Name        string
	Rate        decimal.Decimal `gorm:"type:decimal(5,2)"`
	Description string
	IsDefault   bool
	IsActive    bool
}

// TableName returns the database table name
func (Tax) TableName() string {
	return "taxes"
}

// NewTax creates a named tax rate
func NewTax(orgID uuid.UUID, name string, rate decimal.Decimal) (*Tax, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("organization_id", "cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if _, err := valueobject.NewPercent(rate); err != nil {
		return nil, shared.NewValidationError("rate", "must be between 0 and 100")
	}

	return &Tax{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Rate:             rate,
		IsActive:         true,
	}, nil
}

// SetRate updates the rate value for future selections
func (t *Tax) SetRate(rate decimal.Decimal) error {
	if _, err := valueobject.NewPercent(rate); err != nil {
		return shared.NewValidationError("rate", "must be between 0 and 100")
	}
	t.Rate = rate
	t.Touch()
	return nil
}

// MarkDefault flags this tax as the organization default
func (t *Tax) MarkDefault() {
	t.IsDefault = true
	t.Touch()
}

// ClearDefault removes the default flag
func (t *Tax) ClearDefault() {
	t.IsDefault = false
	t.Touch()
}

// Archive deactivates the tax definition
func (t *Tax) Archive() {
	t.IsActive = false
	t.Touch()
}

// FormatRate renders the rate as a percentage string
func (t *Tax) FormatRate() string {
	return t.Rate.String() + "%"
}

package catalog

import (
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a reusable catalog entry. Line items copy its price and
// description at creation time, so deleting a product never corrupts
// invoices that were built from it.
type Product struct {
	shared.OrgAggregateRoot
	Name        string
	Description string
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)"`
	Unit        string          // e.g. hour, piece, service
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2)"`
	SKU         string
	IsActive    bool
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog entry
func NewProduct(orgID uuid.UUID, name string, unitPrice decimal.Decimal) (*Product, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("organization_id", "cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name", "cannot exceed 200 characters")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit_price", "cannot be negative")
	}

	return &Product{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		UnitPrice:        unitPrice,
		Unit:             "unit",
		TaxRate:          decimal.Zero,
		IsActive:         true,
	}, nil
}

// SetUnitPrice changes the catalog price. Existing line items keep the
// price copied at their creation.
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("unit_price", "cannot be negative")
	}
	p.UnitPrice = price
	p.Touch()
	return nil
}

// SetTaxRate sets the default tax rate suggested for new line items
func (p *Product) SetTaxRate(rate decimal.Decimal) error {
	if _, err := valueobject.NewPercent(rate); err != nil {
		return shared.NewValidationError("tax_rate", "must be between 0 and 100")
	}
	p.TaxRate = rate
	p.Touch()
	return nil
}

// Rename changes the product name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "cannot be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}

// Archive deactivates the product; it stays resolvable for history
func (p *Product) Archive() {
	p.IsActive = false
	p.Touch()
}

// PriceWithTax returns the unit price including the default tax
func (p *Product) PriceWithTax() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return p.UnitPrice.Mul(hundred.Add(p.TaxRate)).Div(hundred)
}

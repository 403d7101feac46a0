package billing

import (
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one line of an invoice. Price, description and rates are
// copied at creation time; a product reference, when present, is purely
// informational.
type InvoiceItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	InvoiceID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID       *uuid.UUID `gorm:"type:uuid"`
	Description     string
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3)"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2)"` // percentage, 8.25 = 8.25%
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2)"` // percentage
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the database table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// ItemInput carries the caller-supplied fields for a new or updated line item
type ItemInput struct {
	ProductID       *uuid.UUID
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
}

func validateItemInput(in ItemInput) error {
	if in.Description == "" {
		return shared.NewValidationError("description", "cannot be empty")
	}
	if len(in.Description) > 500 {
		return shared.NewValidationError("description", "cannot exceed 500 characters")
	}
	if !in.Quantity.IsPositive() {
		return shared.NewValidationError("quantity", "must be greater than zero")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewValidationError("unit_price", "cannot be negative")
	}
	if _, err := valueobject.NewPercent(in.TaxRate); err != nil {
		return shared.NewValidationError("tax_rate", "must be between 0 and 100")
	}
	if _, err := valueobject.NewPercent(in.DiscountPercent); err != nil {
		return shared.NewValidationError("discount_percent", "must be between 0 and 100")
	}
	return nil
}

// newInvoiceItem creates a validated line item; called only through the
// owning invoice
func newInvoiceItem(invoiceID uuid.UUID, in ItemInput, sortOrder int) (*InvoiceItem, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	now := time.Now()
	return &InvoiceItem{
		ID:              uuid.New(),
		InvoiceID:       invoiceID,
		ProductID:       in.ProductID,
		Description:     in.Description,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		TaxRate:         in.TaxRate,
		DiscountPercent: in.DiscountPercent,
		SortOrder:       sortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// apply overwrites the mutable fields from input after validation
func (i *InvoiceItem) apply(in ItemInput) error {
	if err := validateItemInput(in); err != nil {
		return err
	}
	i.ProductID = in.ProductID
	i.Description = in.Description
	i.Quantity = in.Quantity
	i.UnitPrice = in.UnitPrice
	i.TaxRate = in.TaxRate
	i.DiscountPercent = in.DiscountPercent
	i.UpdatedAt = time.Now()
	return nil
}

// Each derived amount is rounded to cents before it participates in any
// further arithmetic. Summing unrounded fractions and rounding only the
// grand total gives different results; the tests pin this policy down.

// Subtotal returns round2(quantity * unit_price), before discount
func (i *InvoiceItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice).Round(2)
}

// Discount returns round2(subtotal * discount_percent / 100)
func (i *InvoiceItem) Discount() decimal.Decimal {
	return i.Subtotal().Mul(i.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
}

// Taxable returns the discounted base the tax applies to
func (i *InvoiceItem) Taxable() decimal.Decimal {
	return i.Subtotal().Sub(i.Discount())
}

// Tax returns round2(taxable * tax_rate / 100)
func (i *InvoiceItem) Tax() decimal.Decimal {
	return i.Taxable().Mul(i.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
}

// Total returns taxable + tax
func (i *InvoiceItem) Total() decimal.Decimal {
	return i.Taxable().Add(i.Tax())
}

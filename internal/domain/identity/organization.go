package identity

import (
	"fmt"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Defaults applied to newly created organizations
const (
	DefaultInvoicePrefix  = "INV"
	DefaultPaymentTerms   = 30 // days
	MaxInvoicePrefixLen   = 10
	InvoiceNumberPadWidth = 4
)

// Organization is the tenant boundary. It owns the invoice numbering
// sequence and the billing defaults applied to new invoices.
type Organization struct {
	shared.BaseAggregateRoot
	Name                string
	LogoURL             string
	AddressLine1        string
	AddressLine2        string
	City                string
	State               string
	PostalCode          string
	Country             string
	Currency            valueobject.Currency `gorm:"type:varchar(3)"`
	InvoicePrefix       string
	InvoiceNextNumber   int64
	DefaultTaxRate      decimal.Decimal `gorm:"type:decimal(5,2)"`
	DefaultPaymentTerms int
	Email               string
	Phone               string
	Website             string
	TaxID               string
}

// TableName returns the database table name
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization with billing defaults
func NewOrganization(name string) (*Organization, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name", "cannot exceed 200 characters")
	}

	return &Organization{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Name:                name,
		Country:             "US",
		Currency:            valueobject.DefaultCurrency,
		InvoicePrefix:       DefaultInvoicePrefix,
		InvoiceNextNumber:   1,
		DefaultTaxRate:      decimal.Zero,
		DefaultPaymentTerms: DefaultPaymentTerms,
	}, nil
}

// Rename changes the organization display name
func (o *Organization) Rename(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "cannot be empty")
	}
	o.Name = name
	o.Touch()
	return nil
}

// SetInvoicePrefix changes the prefix used for newly finalized invoices.
// Already assigned invoice numbers keep their original prefix.
func (o *Organization) SetInvoicePrefix(prefix string) error {
	if prefix == "" {
		return shared.NewValidationError("invoice_prefix", "cannot be empty")
	}
	if len(prefix) > MaxInvoicePrefixLen {
		return shared.NewValidationError("invoice_prefix", fmt.Sprintf("cannot exceed %d characters", MaxInvoicePrefixLen))
	}
	o.InvoicePrefix = prefix
	o.Touch()
	return nil
}

// SetDefaultTaxRate sets the tax rate pre-filled on new line items
func (o *Organization) SetDefaultTaxRate(rate decimal.Decimal) error {
	if _, err := valueobject.NewPercent(rate); err != nil {
		return shared.NewValidationError("default_tax_rate", "must be between 0 and 100")
	}
	o.DefaultTaxRate = rate
	o.Touch()
	return nil
}

// SetDefaultPaymentTerms sets the payment-terms offset in days
func (o *Organization) SetDefaultPaymentTerms(days int) error {
	if days < 0 {
		return shared.NewValidationError("default_payment_terms", "cannot be negative")
	}
	o.DefaultPaymentTerms = days
	o.Touch()
	return nil
}

// SetCurrency sets the organization default currency
func (o *Organization) SetCurrency(currency valueobject.Currency) error {
	if !currency.IsValid() {
		return shared.NewValidationError("currency", "must be a 3-letter ISO 4217 code")
	}
	o.Currency = currency
	o.Touch()
	return nil
}

// SetLogoURL records the uploaded logo location
func (o *Organization) SetLogoURL(url string) {
	o.LogoURL = url
	o.Touch()
}

// FormatInvoiceNumber renders a sequence value with the organization prefix,
// zero-padded to four digits (INV-0001). Numbers beyond 9999 widen naturally.
func (o *Organization) FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s-%0*d", o.InvoicePrefix, InvoiceNumberPadWidth, seq)
}

// PeekInvoiceNumber returns the number the next finalized invoice would
// receive. Allocation itself happens via the repository's atomic increment.
func (o *Organization) PeekInvoiceNumber() string {
	return o.FormatInvoiceNumber(o.InvoiceNextNumber)
}

// DueDateFor derives a due date from an issue date using the organization's
// default payment terms
func (o *Organization) DueDateFor(issueDate time.Time) time.Time {
	return issueDate.AddDate(0, 0, o.DefaultPaymentTerms)
}

// FullAddress returns the formatted postal address, one component per line
func (o *Organization) FullAddress() string {
	return valueobject.FormatAddress(o.AddressLine1, o.AddressLine2, o.City, o.State, o.PostalCode, o.Country)
}

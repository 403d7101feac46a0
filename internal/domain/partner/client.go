package partner

import (
	"strings"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Client is a billable counterparty belonging to exactly one organization.
// Invoices reference clients, so a client cannot be deleted while invoices
// for it exist; the repository enforces that restriction.
type Client struct {
	shared.OrgAggregateRoot
	Name         string
	Email        string
	Phone        string
	CompanyName  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	TaxID        string
	Currency     valueobject.Currency `gorm:"type:varchar(3)"`
	Notes        string
	IsActive     bool
}

// TableName returns the database table name
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client for an organization. The currency defaults
// to the organization currency when empty.
func NewClient(orgID uuid.UUID, name string, currency valueobject.Currency) (*Client, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("organization_id", "cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name", "cannot exceed 200 characters")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("currency", "must be a 3-letter ISO 4217 code")
	}

	return &Client{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Country:          "US",
		Currency:         currency,
		IsActive:         true,
	}, nil
}

// Rename changes the contact name
func (c *Client) Rename(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "cannot be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}

// SetEmail sets the billing email address
func (c *Client) SetEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewValidationError("email", "must be a valid email address")
	}
	c.Email = email
	c.Touch()
	return nil
}

// SetCurrency overrides the invoicing currency for this client
func (c *Client) SetCurrency(currency valueobject.Currency) error {
	if !currency.IsValid() {
		return shared.NewValidationError("currency", "must be a 3-letter ISO 4217 code")
	}
	c.Currency = currency
	c.Touch()
	return nil
}

// Archive deactivates the client without removing invoice history
func (c *Client) Archive() {
	c.IsActive = false
	c.Touch()
}

// Restore reactivates an archived client
func (c *Client) Restore() {
	c.IsActive = true
	c.Touch()
}

// DisplayName returns the company name when present, the contact name
// otherwise
func (c *Client) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return c.Name
}

// HasEmail reports whether the client can receive invoices by email
func (c *Client) HasEmail() bool {
	return c.Email != ""
}

// FullAddress returns the formatted postal address
func (c *Client) FullAddress() string {
	return valueobject.FormatAddress(c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode, c.Country)
}

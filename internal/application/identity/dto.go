package identity

import (
	"time"

	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdateOrganizationRequest applies a partial settings update
type UpdateOrganizationRequest struct {
	Name                *string          `json:"name" binding:"omitempty,min=1,max=200"`
	AddressLine1        *string          `json:"address_line1"`
	AddressLine2        *string          `json:"address_line2"`
	City                *string          `json:"city"`
	State               *string          `json:"state"`
	PostalCode          *string          `json:"postal_code"`
	Country             *string          `json:"country"`
	Currency            *string          `json:"currency" binding:"omitempty,currency"`
	InvoicePrefix       *string          `json:"invoice_prefix" binding:"omitempty,min=1,max=10"`
	DefaultTaxRate      *decimal.Decimal `json:"default_tax_rate"`
	DefaultPaymentTerms *int             `json:"default_payment_terms"`
	Email               *string          `json:"email" binding:"omitempty,email"`
	Phone               *string          `json:"phone"`
	Website             *string          `json:"website"`
	TaxID               *string          `json:"tax_id"`
}

// OrganizationResponse is the organization representation returned by the API
type OrganizationResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	LogoURL             string          `json:"logo_url,omitempty"`
	AddressLine1        string          `json:"address_line1,omitempty"`
	AddressLine2        string          `json:"address_line2,omitempty"`
	City                string          `json:"city,omitempty"`
	State               string          `json:"state,omitempty"`
	PostalCode          string          `json:"postal_code,omitempty"`
	Country             string          `json:"country"`
	Currency            string          `json:"currency"`
	InvoicePrefix       string          `json:"invoice_prefix"`
	NextInvoiceNumber   string          `json:"next_invoice_number"`
	DefaultTaxRate      decimal.Decimal `json:"default_tax_rate"`
	DefaultPaymentTerms int             `json:"default_payment_terms"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	Website             string          `json:"website,omitempty"`
	TaxID               string          `json:"tax_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToOrganizationResponse converts an organization aggregate
func ToOrganizationResponse(o *identity.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                  o.ID,
		Name:                o.Name,
		LogoURL:             o.LogoURL,
		AddressLine1:        o.AddressLine1,
		AddressLine2:        o.AddressLine2,
		City:                o.City,
		State:               o.State,
		PostalCode:          o.PostalCode,
		Country:             o.Country,
		Currency:            string(o.Currency),
		InvoicePrefix:       o.InvoicePrefix,
		NextInvoiceNumber:   o.PeekInvoiceNumber(),
		DefaultTaxRate:      o.DefaultTaxRate,
		DefaultPaymentTerms: o.DefaultPaymentTerms,
		Email:               o.Email,
		Phone:               o.Phone,
		Website:             o.Website,
		TaxID:               o.TaxID,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// AddMemberRequest attaches a new user to the organization
type AddMemberRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required,min=1,max=200"`
	Role     string `json:"role" binding:"omitempty,oneof=owner member"`
}

// UserResponse is the user representation returned by the API
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Role           string     `json:"role"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	IsActive       bool       `json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToUserResponse converts a user aggregate
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		OrganizationID: u.OrganizationID,
		Role:           string(u.Role),
		AvatarURL:      u.AvatarURL,
		IsActive:       u.IsActive,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

package partner

import (
	"time"

	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateClientRequest creates a new client
type CreateClientRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
	CompanyName  string `json:"company_name" binding:"omitempty,max=200"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	TaxID        string `json:"tax_id"`
	Currency     string `json:"currency" binding:"omitempty,currency"`
	Notes        string `json:"notes"`
}

// UpdateClientRequest updates an existing client; nil fields are untouched
type UpdateClientRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	CompanyName  *string `json:"company_name"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	TaxID        *string `json:"tax_id"`
	Currency     *string `json:"currency" binding:"omitempty,currency"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}

// ClientListFilter narrows the client list
type ClientListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
}

// ClientResponse is the client representation returned by the API
type ClientResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Country      string    `json:"country,omitempty"`
	TaxID        string    `json:"tax_id,omitempty"`
	Currency     string    `json:"currency"`
	Notes        string    `json:"notes,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToClientResponse converts a client aggregate
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		DisplayName:  c.DisplayName(),
		Email:        c.Email,
		Phone:        c.Phone,
		CompanyName:  c.CompanyName,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		State:        c.State,
		PostalCode:   c.PostalCode,
		Country:      c.Country,
		TaxID:        c.TaxID,
		Currency:     string(c.Currency),
		Notes:        c.Notes,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

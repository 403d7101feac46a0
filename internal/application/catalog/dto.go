package catalog

import (
	"time"

	"github.com/invoicing/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a catalog product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"omitempty,max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	Unit        string          `json:"unit" binding:"omitempty,max=20"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	SKU         string          `json:"sku" binding:"omitempty,max=50"`
}

// UpdateProductRequest applies a partial product update
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Unit        *string          `json:"unit"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	SKU         *string          `json:"sku"`
	IsActive    *bool            `json:"is_active"`
}

// ProductListFilter narrows the product list
type ProductListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
}

// ProductResponse is the product representation returned by the API
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	SKU         string          `json:"sku,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateTaxRequest creates a named tax rate
type CreateTaxRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Rate        decimal.Decimal `json:"rate" binding:"required"`
	Description string          `json:"description" binding:"omitempty,max=500"`
	IsDefault   bool            `json:"is_default"`
}

// UpdateTaxRequest applies a partial tax update
type UpdateTaxRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Rate        *decimal.Decimal `json:"rate"`
	Description *string          `json:"description"`
	IsDefault   *bool            `json:"is_default"`
	IsActive    *bool            `json:"is_active"`
}

// TaxResponse is the tax representation returned by the API
type TaxResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description,omitempty"`
	IsDefault   bool            `json:"is_default"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product aggregate
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		Unit:        p.Unit,
		TaxRate:     p.TaxRate,
		SKU:         p.SKU,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToTaxResponse converts a tax aggregate
func ToTaxResponse(t *catalog.Tax) TaxResponse {
	return TaxResponse{
		ID:          t.ID,
		Name:        t.Name,
		Rate:        t.Rate,
		Description: t.Description,
		IsDefault:   t.IsDefault,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

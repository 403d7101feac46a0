package billing

import (
	"time"

	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest creates a new draft invoice
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID          `json:"client_id" binding:"required"`
	IssueDate *time.Time         `json:"issue_date"`
	DueDate   *time.Time         `json:"due_date"`
	Currency  string             `json:"currency"`
	Notes     string             `json:"notes"`
	Terms     string             `json:"terms"`
	Footer    string             `json:"footer"`
	Items     []InvoiceItemInput `json:"items"`
}

// InvoiceItemInput is one line item in a create or item request
type InvoiceItemInput struct {
	ProductID       *uuid.UUID      `json:"product_id"`
	Description     string          `json:"description" binding:"required,min=1,max=500"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// UpdateInvoiceRequest updates header fields of a draft invoice
type UpdateInvoiceRequest struct {
	ClientID  *uuid.UUID `json:"client_id"`
	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
	Notes     *string    `json:"notes"`
	Terms     *string    `json:"terms"`
	Footer    *string    `json:"footer"`
}

// MarkPaidRequest records payment of an invoice; a nil amount means paid
// in full
type MarkPaidRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	PaidAt *time.Time       `json:"paid_at"`
}

// InvoiceListFilter narrows the invoice list
type InvoiceListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
	Search   string `form:"search"`
}

// InvoiceItemResponse is one line item with its derived amounts
type InvoiceItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	SortOrder       int             `json:"sort_order"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
}

// InvoiceResponse is the full invoice representation. Status reflects the
// read-time overdue classification; balance_due is always derived.
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number,omitempty"`
	ClientID      uuid.UUID             `json:"client_id"`
	ClientName    string                `json:"client_name,omitempty"`
	Status        string                `json:"status"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       time.Time             `json:"due_date"`
	Currency      string                `json:"currency"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	DiscountTotal decimal.Decimal       `json:"discount_total"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	Total         decimal.Decimal       `json:"total"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	DaysOverdue   int                   `json:"days_overdue,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Terms         string                `json:"terms,omitempty"`
	Footer        string                `json:"footer,omitempty"`
	PDFURL        string                `json:"pdf_url,omitempty"`
	SentAt        *time.Time            `json:"sent_at,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
	Version       int                   `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceListItemResponse is the compact list representation
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name,omitempty"`
	Status        string          `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	DaysOverdue   int             `json:"days_overdue,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EmailLogResponse is one delivery attempt record
type EmailLogResponse struct {
	ID             uuid.UUID  `json:"id"`
	InvoiceID      *uuid.UUID `json:"invoice_id,omitempty"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toItemResponse(it *billing.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:              it.ID,
		ProductID:       it.ProductID,
		Description:     it.Description,
		Quantity:        it.Quantity,
		UnitPrice:       it.UnitPrice,
		TaxRate:         it.TaxRate,
		DiscountPercent: it.DiscountPercent,
		SortOrder:       it.SortOrder,
		Subtotal:        it.Subtotal(),
		Discount:        it.Discount(),
		Tax:             it.Tax(),
		Total:           it.Total(),
	}
}

// ToInvoiceResponse converts an invoice aggregate, classifying overdue as
// of the given instant
func ToInvoiceResponse(inv *billing.Invoice, asOf time.Time) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for i := range inv.Items {
		items = append(items, toItemResponse(&inv.Items[i]))
	}
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		Status:        inv.EffectiveStatus(asOf).String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		BalanceDue:    inv.BalanceDue(),
		DaysOverdue:   inv.DaysOverdue(asOf),
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		Footer:        inv.Footer,
		PDFURL:        inv.PDFURL,
		SentAt:        inv.SentAt,
		PaidAt:        inv.PaidAt,
		CancelledAt:   inv.CancelledAt,
		Items:         items,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceListItemResponse converts one invoice for the list view
func ToInvoiceListItemResponse(inv *billing.Invoice, clientName string, asOf time.Time) InvoiceListItemResponse {
	return InvoiceListItemResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		ClientName:    clientName,
		Status:        inv.EffectiveStatus(asOf).String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		BalanceDue:    inv.BalanceDue(),
		DaysOverdue:   inv.DaysOverdue(asOf),
		CreatedAt:     inv.CreatedAt,
	}
}

// ToEmailLogResponse converts one delivery record
func ToEmailLogResponse(l *billing.EmailLog) EmailLogResponse {
	return EmailLogResponse{
		ID:             l.ID,
		InvoiceID:      l.InvoiceID,
		RecipientEmail: l.RecipientEmail,
		Subject:        l.Subject,
		Status:         string(l.Status),
		ErrorMessage:   l.ErrorMessage,
		SentAt:         l.SentAt,
		CreatedAt:      l.CreatedAt,
	}
}

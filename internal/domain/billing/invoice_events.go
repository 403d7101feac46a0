package billing

import (
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventInvoiceCreated   = "invoice.created"
	EventInvoiceSent      = "invoice.sent"
	EventInvoicePaid      = "invoice.paid"
	EventInvoiceCancelled = "invoice.cancelled"
	EventInvoiceOverdue   = "invoice.overdue"
)

const aggregateTypeInvoice = "Invoice"

// InvoiceCreatedEvent fires when a new draft is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID string `json:"client_id"`
	Currency string `json:"currency"`
}

func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreated, aggregateTypeInvoice, inv.ID, inv.OrganizationID),
		ClientID:        inv.ClientID.String(),
		Currency:        inv.Currency,
	}
}

// InvoiceSentEvent fires when the invoice is first sent and its number
// is assigned
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      string          `json:"client_id"`
	Total         decimal.Decimal `json:"total"`
}

func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceSent, aggregateTypeInvoice, inv.ID, inv.OrganizationID),
		InvoiceNumber:   inv.InvoiceNumber,
		ClientID:        inv.ClientID.String(),
		Total:           inv.Total,
	}
}

// InvoicePaidEvent fires when payment is recorded
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePaid, aggregateTypeInvoice, inv.ID, inv.OrganizationID),
		InvoiceNumber:   inv.InvoiceNumber,
		AmountPaid:      inv.AmountPaid,
	}
}

// InvoiceCancelledEvent fires when a draft is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
}

func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCancelled, aggregateTypeInvoice, inv.ID, inv.OrganizationID),
	}
}

// InvoiceOverdueEvent fires when the sweep stamps an invoice overdue
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceOverdue, aggregateTypeInvoice, inv.ID, inv.OrganizationID),
		InvoiceNumber:   inv.InvoiceNumber,
		BalanceDue:      inv.BalanceDue(),
	}
}

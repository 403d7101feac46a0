package billing

import (
	"context"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository persists invoice aggregates together with their items.
// Every lookup is scoped to an organization; an invoice belonging to
// another tenant behaves exactly like one that does not exist.
type InvoiceRepository interface {
	// FindByIDForOrg loads an invoice with its items ordered by sort order
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*Invoice, error)
	// FindAllForOrg lists invoices for an organization; Filters supports
	// "status" and "client_id", Search matches the invoice number
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[Invoice], error)
	// FindOverdueForOrg returns sent invoices past due with an outstanding
	// balance as of the given day
	FindOverdueForOrg(ctx context.Context, organizationID uuid.UUID, asOf time.Time) ([]Invoice, error)
	// CountForOrg counts invoices in the given statuses, all when empty
	CountForOrg(ctx context.Context, organizationID uuid.UUID, statuses ...InvoiceStatus) (int64, error)
	// Save persists the invoice and reconciles its items in one transaction
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists with an optimistic version check, returning
	// ErrConcurrencyConflict when the stored version moved on
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// DeleteForOrg removes the invoice and its items
	DeleteForOrg(ctx context.Context, id, organizationID uuid.UUID) error
}

// EmailLogRepository persists delivery attempts
type EmailLogRepository interface {
	Append(ctx context.Context, log *EmailLog) error
	Update(ctx context.Context, log *EmailLog) error
	FindByInvoiceForOrg(ctx context.Context, invoiceID, organizationID uuid.UUID) ([]EmailLog, error)
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[EmailLog], error)
}

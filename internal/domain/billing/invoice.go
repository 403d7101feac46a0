package billing

import (
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusSent      InvoiceStatus = "sent"
	StatusPaid      InvoiceStatus = "paid"
	StatusOverdue   InvoiceStatus = "overdue"
	StatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
// Paid and cancelled are terminal; a sent invoice can no longer be cancelled.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	transitions := map[InvoiceStatus][]InvoiceStatus{
		StatusDraft:     {StatusSent, StatusCancelled},
		StatusSent:      {StatusPaid, StatusOverdue},
		StatusOverdue:   {StatusPaid},
		StatusPaid:      {},
		StatusCancelled: {},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// DefaultPaymentTolerance is the overpayment slack accepted by MarkPaid
// when the caller does not configure one
var DefaultPaymentTolerance = decimal.NewFromFloat(0.01)

// Invoice is the billing aggregate root. Line items are owned by the
// invoice and are only mutable while it is a draft; every stored total is
// recomputed from the items on each mutation.
type Invoice struct {
	shared.OrgAggregateRoot
	// Uniqueness of (organization_id, invoice_number) is enforced by a
	// partial index in the schema migration; empty numbers are exempt.
	InvoiceNumber string    `gorm:"size:50;index"`
	ClientID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        InvoiceStatus
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2)"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2)"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes         string
	Terms         string
	Footer        string
	PDFURL        string
	SentAt        *time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the database table name
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a draft invoice with no items and no number. The
// invoice number is assigned when the invoice is first sent, so abandoned
// drafts never consume a slot in the sequence.
func NewInvoice(organizationID, clientID uuid.UUID, currency string, issueDate, dueDate time.Time) (*Invoice, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewValidationError("organization_id", "cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client_id", "cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewValidationError("currency", "cannot be empty")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("due_date", "cannot be empty")
	}
	if beforeDay(dueDate, issueDate) {
		return nil, shared.NewValidationError("due_date", "cannot be before issue date")
	}

	inv := &Invoice{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		ClientID:         clientID,
		Status:           StatusDraft,
		IssueDate:        issueDate,
		DueDate:          dueDate,
		Currency:         currency,
		Subtotal:         decimal.Zero,
		DiscountTotal:    decimal.Zero,
		TaxTotal:         decimal.Zero,
		Total:            decimal.Zero,
		AmountPaid:       decimal.Zero,
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// CanModify reports whether items and header fields may still change
func (inv *Invoice) CanModify() bool {
	return inv.Status == StatusDraft
}

// AddItem appends a line item and recomputes the stored totals
func (inv *Invoice) AddItem(in ItemInput) (*InvoiceItem, error) {
	if !inv.CanModify() {
		return nil, shared.NewInvalidStateError("only draft invoices can be modified")
	}
	item, err := newInvoiceItem(inv.ID, in, len(inv.Items))
	if err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, *item)
	inv.recalculateTotals()
	return item, nil
}

// UpdateItem replaces the fields of an existing line item
func (inv *Invoice) UpdateItem(itemID uuid.UUID, in ItemInput) error {
	if !inv.CanModify() {
		return shared.NewInvalidStateError("only draft invoices can be modified")
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			if err := inv.Items[i].apply(in); err != nil {
				return err
			}
			inv.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "invoice item not found")
}

// RemoveItem deletes a line item and compacts the sort order
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if !inv.CanModify() {
		return shared.NewInvalidStateError("only draft invoices can be modified")
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			for j := range inv.Items {
				inv.Items[j].SortOrder = j
			}
			inv.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "invoice item not found")
}

// UpdateDetails changes the header fields of a draft invoice
func (inv *Invoice) UpdateDetails(issueDate, dueDate time.Time, notes, terms, footer string) error {
	if !inv.CanModify() {
		return shared.NewInvalidStateError("only draft invoices can be modified")
	}
	if !issueDate.IsZero() {
		inv.IssueDate = issueDate
	}
	if !dueDate.IsZero() {
		inv.DueDate = dueDate
	}
	if beforeDay(inv.DueDate, inv.IssueDate) {
		return shared.NewValidationError("due_date", "cannot be before issue date")
	}
	inv.Notes = notes
	inv.Terms = terms
	inv.Footer = footer
	inv.Touch()
	return nil
}

// ChangeClient repoints a draft invoice at a different client
func (inv *Invoice) ChangeClient(clientID uuid.UUID) error {
	if !inv.CanModify() {
		return shared.NewInvalidStateError("only draft invoices can be modified")
	}
	if clientID == uuid.Nil {
		return shared.NewValidationError("client_id", "cannot be empty")
	}
	inv.ClientID = clientID
	inv.Touch()
	return nil
}

// recalculateTotals rebuilds every stored amount from the line items.
// Per-line amounts are already rounded, so the sums are exact in cents.
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	for i := range inv.Items {
		subtotal = subtotal.Add(inv.Items[i].Subtotal())
		discount = discount.Add(inv.Items[i].Discount())
		tax = tax.Add(inv.Items[i].Tax())
	}
	inv.Subtotal = subtotal
	inv.DiscountTotal = discount
	inv.TaxTotal = tax
	inv.Total = subtotal.Sub(discount).Add(tax)
	inv.Touch()
}

// Send transitions a draft invoice to sent, stamping the allocated invoice
// number. The number is assigned here exactly once; callers must pass a
// value freshly drawn from the organization's sequence.
func (inv *Invoice) Send(invoiceNumber string) error {
	if !inv.Status.CanTransitionTo(StatusSent) {
		return shared.NewInvalidStateError("cannot send invoice in status " + inv.Status.String())
	}
	if len(inv.Items) == 0 {
		return shared.NewInvalidStateError("cannot send invoice without items")
	}
	if invoiceNumber == "" {
		return shared.NewValidationError("invoice_number", "cannot be empty")
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = invoiceNumber
	}

	now := time.Now()
	inv.Status = StatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now
	inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	return nil
}

// CanResend reports whether another delivery attempt is allowed. Overdue
// is included so a reminder can still go out after the sweep has run.
func (inv *Invoice) CanResend() bool {
	return inv.Status == StatusSent || inv.Status == StatusOverdue
}

// Resend records another delivery of an already sent invoice. The status
// and invoice number do not change.
func (inv *Invoice) Resend() error {
	if !inv.CanResend() {
		return shared.NewInvalidStateError("can only resend a sent invoice")
	}
	now := time.Now()
	inv.SentAt = &now
	inv.UpdatedAt = now
	return nil
}

// MarkPaid records payment of the invoice. A nil amount means paid in
// full. Overpayment beyond tolerance is rejected.
func (inv *Invoice) MarkPaid(amount *decimal.Decimal, paidAt *time.Time, tolerance decimal.Decimal) error {
	switch inv.Status {
	case StatusDraft:
		return shared.NewInvalidStateError("cannot mark a draft invoice as paid")
	case StatusPaid:
		return shared.NewInvalidStateError("invoice is already paid")
	case StatusCancelled:
		return shared.NewInvalidStateError("cannot mark a cancelled invoice as paid")
	}

	paid := inv.Total
	if amount != nil {
		paid = *amount
	}
	if paid.IsNegative() {
		return shared.NewValidationError("amount_paid", "cannot be negative")
	}
	if paid.GreaterThan(inv.Total.Add(tolerance)) {
		return shared.NewValidationError("amount_paid", "cannot exceed invoice total")
	}

	now := time.Now()
	when := now
	if paidAt != nil {
		when = *paidAt
	}
	inv.Status = StatusPaid
	inv.AmountPaid = paid
	inv.PaidAt = &when
	inv.UpdatedAt = now
	inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	return nil
}

// Cancel voids a draft invoice. Sent invoices cannot be cancelled; they
// stay on the books until paid or written off.
func (inv *Invoice) Cancel() error {
	if !inv.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewInvalidStateError("cannot cancel invoice in status " + inv.Status.String())
	}
	now := time.Now()
	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))
	return nil
}

// MarkOverdue persists the overdue classification, used by the periodic
// sweep so dashboards can filter on the stored status
func (inv *Invoice) MarkOverdue(asOf time.Time) error {
	if inv.Status == StatusOverdue {
		return nil
	}
	if !inv.Status.CanTransitionTo(StatusOverdue) {
		return shared.NewInvalidStateError("cannot mark invoice overdue in status " + inv.Status.String())
	}
	if !inv.IsOverdue(asOf) {
		return shared.NewInvalidStateError("invoice is not past due")
	}
	inv.Status = StatusOverdue
	inv.Touch()
	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))
	return nil
}

// BalanceDue is always derived, never stored
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.Total.Sub(inv.AmountPaid)
}

// IsOverdue classifies the invoice at read time: past its due date with an
// outstanding balance, regardless of whether the sweep has stamped the
// status yet. Date comparison is at day granularity.
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	if inv.Status != StatusSent && inv.Status != StatusOverdue {
		return false
	}
	return beforeDay(inv.DueDate, asOf) && inv.BalanceDue().IsPositive()
}

// EffectiveStatus returns the stored status upgraded to overdue when the
// read-time classification applies
func (inv *Invoice) EffectiveStatus(asOf time.Time) InvoiceStatus {
	if inv.Status == StatusSent && inv.IsOverdue(asOf) {
		return StatusOverdue
	}
	return inv.Status
}

// DaysOverdue returns how many whole days past due the invoice is, zero
// when not overdue
func (inv *Invoice) DaysOverdue(asOf time.Time) int {
	if !inv.IsOverdue(asOf) {
		return 0
	}
	due := dayOf(inv.DueDate)
	today := dayOf(asOf)
	return int(today.Sub(due).Hours() / 24)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// beforeDay reports whether a falls on an earlier calendar day than b
func beforeDay(a, b time.Time) bool {
	return dayOf(a).Before(dayOf(b))
}

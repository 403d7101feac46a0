package billing

import (
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmailStatus is the delivery state of a logged email
type EmailStatus string

const (
	EmailStatusPending   EmailStatus = "pending"
	EmailStatusSent      EmailStatus = "sent"
	EmailStatusDelivered EmailStatus = "delivered"
	EmailStatusFailed    EmailStatus = "failed"
	EmailStatusBounced   EmailStatus = "bounced"
)

// EmailLog is an append-only record of every delivery attempt made for an
// invoice. A failed delivery never rolls back the invoice state it was
// attempted for; the log is how operators find out.
type EmailLog struct {
	shared.BaseEntity
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvoiceID      *uuid.UUID `gorm:"type:uuid;index"`
	RecipientEmail string
	Subject        string
	Status         EmailStatus
	ProviderID     string
	ErrorMessage   string
	SentAt         *time.Time
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the database table name
func (EmailLog) TableName() string {
	return "email_logs"
}

// NewEmailLog creates a pending log entry before the provider is called
func NewEmailLog(organizationID uuid.UUID, invoiceID *uuid.UUID, recipient, subject string) (*EmailLog, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewValidationError("organization_id", "cannot be empty")
	}
	if recipient == "" {
		return nil, shared.NewValidationError("recipient_email", "cannot be empty")
	}
	return &EmailLog{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		InvoiceID:      invoiceID,
		RecipientEmail: recipient,
		Subject:        subject,
		Status:         EmailStatusPending,
	}, nil
}

// MarkSent records a successful provider hand-off
func (l *EmailLog) MarkSent(providerID string) {
	now := time.Now()
	l.Status = EmailStatusSent
	l.ProviderID = providerID
	l.SentAt = &now
	l.UpdatedAt = now
}

// MarkFailed records a provider error
func (l *EmailLog) MarkFailed(reason string) {
	l.Status = EmailStatusFailed
	l.ErrorMessage = reason
	l.Touch()
}

// MarkDelivered records a delivery confirmation from a provider webhook
func (l *EmailLog) MarkDelivered() {
	l.Status = EmailStatusDelivered
	l.Touch()
}

// MarkBounced records a bounce notification
func (l *EmailLog) MarkBounced(reason string) {
	l.Status = EmailStatusBounced
	l.ErrorMessage = reason
	l.Touch()
}

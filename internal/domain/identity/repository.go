package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository persists organizations and owns the invoice number
// sequence
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Save(ctx context.Context, org *Organization) error

	// AllocateInvoiceSequence atomically claims the organization's next
	// sequence value and advances the counter by exactly one. The increment
	// must be strictly serializable per organization: two concurrent calls
	// never observe the same value.
	AllocateInvoiceSequence(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID) ([]User, error)
	Save(ctx context.Context, user *User) error
}

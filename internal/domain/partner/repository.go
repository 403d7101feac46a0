package partner

import (
	"context"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository persists clients scoped to an organization
type ClientRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Client, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Client, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, client *Client) error

	// FindNamesByIDs resolves display names for a set of clients in one
	// query; missing IDs are simply absent from the result
	FindNamesByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// DeleteForOrg removes a client. It fails with a conflict when invoices
	// still reference the client: an invoice must always resolve to a valid
	// client.
	DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error
}

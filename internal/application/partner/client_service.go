package partner

import (
	"context"

	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ClientService handles client management operations
type ClientService struct {
	clientRepo partner.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// Create creates a new client for the organization
func (s *ClientService) Create(ctx context.Context, orgID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(orgID, req.Name, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	if err := client.SetEmail(req.Email); err != nil {
		return nil, err
	}
	client.Phone = req.Phone
	client.CompanyName = req.CompanyName
	client.AddressLine1 = req.AddressLine1
	client.AddressLine2 = req.AddressLine2
	client.City = req.City
	client.State = req.State
	client.PostalCode = req.PostalCode
	if req.Country != "" {
		client.Country = req.Country
	}
	client.TaxID = req.TaxID
	client.Notes = req.Notes

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, orgID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForOrg(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// List retrieves clients with pagination; Search matches name, company
// name and email
func (s *ClientService) List(ctx context.Context, orgID uuid.UUID, filter ClientListFilter) (*shared.Paginated[ClientResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	if filter.Active != nil {
		f.Filters["is_active"] = *filter.Active
	}

	clients, err := s.clientRepo.FindAllForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.clientRepo.CountForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	items := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, ToClientResponse(&clients[i]))
	}
	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, orgID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForOrg(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := client.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := client.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Currency != nil {
		if err := client.SetCurrency(valueobject.Currency(*req.Currency)); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.CompanyName != nil {
		client.CompanyName = *req.CompanyName
	}
	if req.AddressLine1 != nil {
		client.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		client.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.State != nil {
		client.State = *req.State
	}
	if req.PostalCode != nil {
		client.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		client.Country = *req.Country
	}
	if req.TaxID != nil {
		client.TaxID = *req.TaxID
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.IsActive != nil {
		if *req.IsActive {
			client.Restore()
		} else {
			client.Archive()
		}
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// Delete removes a client. Fails with a conflict when invoices still
// reference it; archiving is the alternative that keeps history.
func (s *ClientService) Delete(ctx context.Context, orgID, clientID uuid.UUID) error {
	if _, err := s.clientRepo.FindByIDForOrg(ctx, orgID, clientID); err != nil {
		return err
	}
	return s.clientRepo.DeleteForOrg(ctx, orgID, clientID)
}

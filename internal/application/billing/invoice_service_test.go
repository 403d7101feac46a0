package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceMocks struct {
	invoiceRepo  *MockInvoiceRepository
	emailLogRepo *MockEmailLogRepository
	orgRepo      *MockOrganizationRepository
	clientRepo   *MockClientRepository
	pdf          *MockPDFRenderer
	storage      *MockObjectStorage
	email        *MockEmailSender
	idem         *MockIdempotencyStore
}

func newTestService(t *testing.T) (*InvoiceService, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		invoiceRepo:  new(MockInvoiceRepository),
		emailLogRepo: new(MockEmailLogRepository),
		orgRepo:      new(MockOrganizationRepository),
		clientRepo:   new(MockClientRepository),
		pdf:          new(MockPDFRenderer),
		storage:      new(MockObjectStorage),
		email:        new(MockEmailSender),
		idem:         new(MockIdempotencyStore),
	}
	svc := NewInvoiceService(
		m.invoiceRepo, m.emailLogRepo, m.orgRepo, m.clientRepo,
		m.pdf, m.storage, m.email, m.idem, zap.NewNop(),
	)
	return svc, m
}

func testOrg(t *testing.T) *identity.Organization {
	t.Helper()
	org, err := identity.NewOrganization("Acme Corp")
	require.NoError(t, err)
	return org
}

func testClient(t *testing.T, orgID uuid.UUID) *partner.Client {
	t.Helper()
	client, err := partner.NewClient(orgID, "Jane Doe", "USD")
	require.NoError(t, err)
	require.NoError(t, client.SetEmail("jane@example.com"))
	return client
}

func draftInvoice(t *testing.T, orgID, clientID uuid.UUID, withItem bool) *billing.Invoice {
	t.Helper()
	now := time.Now()
	inv, err := billing.NewInvoice(orgID, clientID, "USD", now, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	if withItem {
		_, err = inv.AddItem(billing.ItemInput{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromFloat(50),
			TaxRate:     decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	}
	inv.ClearDomainEvents()
	return inv
}

func TestInvoiceService_Create(t *testing.T) {
	t.Run("creates draft with org defaults", func(t *testing.T) {
		svc, m := newTestService(t)
		org := testOrg(t)
		client := testClient(t, org.ID)

		m.clientRepo.On("FindByIDForOrg", mock.Anything, org.ID, client.ID).Return(client, nil)
		m.orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		m.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		resp, err := svc.Create(context.Background(), org.ID, CreateInvoiceRequest{
			ClientID: client.ID,
			Items: []InvoiceItemInput{{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromFloat(50),
				TaxRate:     decimal.NewFromInt(10),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "draft", resp.Status)
		assert.Empty(t, resp.InvoiceNumber)
		assert.Equal(t, "110", resp.Total.String())
		assert.Equal(t, "Jane Doe", resp.ClientName)
		// due date falls out of the org's 30 day terms
		assert.Equal(t, resp.IssueDate.AddDate(0, 0, 30).Format("2006-01-02"), resp.DueDate.Format("2006-01-02"))
		m.invoiceRepo.AssertExpectations(t)
	})

	t.Run("unknown client fails", func(t *testing.T) {
		svc, m := newTestService(t)
		orgID, clientID := uuid.New(), uuid.New()
		m.clientRepo.On("FindByIDForOrg", mock.Anything, orgID, clientID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(context.Background(), orgID, CreateInvoiceRequest{ClientID: clientID})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInvoiceService_Send(t *testing.T) {
	setup := func(t *testing.T) (*InvoiceService, *serviceMocks, *identity.Organization, *partner.Client, *billing.Invoice) {
		svc, m := newTestService(t)
		org := testOrg(t)
		client := testClient(t, org.ID)
		inv := draftInvoice(t, org.ID, client.ID, true)

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, org.ID).Return(inv, nil)
		m.clientRepo.On("FindByIDForOrg", mock.Anything, org.ID, client.ID).Return(client, nil)
		m.orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		return svc, m, org, client, inv
	}

	t.Run("allocates number and delivers", func(t *testing.T) {
		svc, m, org, _, inv := setup(t)

		m.idem.On("MarkProcessed", mock.Anything, "invoice:send:"+inv.ID.String(), mock.Anything).Return(true, nil)
		m.orgRepo.On("AllocateInvoiceSequence", mock.Anything, org.ID).Return(int64(1), nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)
		m.emailLogRepo.On("Append", mock.Anything, mock.AnythingOfType("*billing.EmailLog")).Return(nil)
		m.pdf.On("RenderInvoice", mock.Anything, mock.AnythingOfType("billing.InvoiceDocument")).Return([]byte("%PDF"), nil)
		m.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return("https://cdn.example.com/inv.pdf", nil)
		m.invoiceRepo.On("Save", mock.Anything, inv).Return(nil)
		m.email.On("Send", mock.Anything, mock.AnythingOfType("billing.EmailMessage")).Return("re_123", nil)
		m.emailLogRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *billing.EmailLog) bool {
			return l.Status == billing.EmailStatusSent && l.ProviderID == "re_123"
		})).Return(nil)

		resp, err := svc.Send(context.Background(), org.ID, inv.ID)

		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		assert.Equal(t, "INV-0001", resp.InvoiceNumber)
		assert.Equal(t, "https://cdn.example.com/inv.pdf", inv.PDFURL)
		m.emailLogRepo.AssertExpectations(t)
	})

	t.Run("email failure does not roll back the send", func(t *testing.T) {
		svc, m, org, _, inv := setup(t)

		m.idem.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		m.orgRepo.On("AllocateInvoiceSequence", mock.Anything, org.ID).Return(int64(7), nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)
		m.emailLogRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		m.pdf.On("RenderInvoice", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
		m.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn.example.com/inv.pdf", nil)
		m.invoiceRepo.On("Save", mock.Anything, inv).Return(nil)
		m.email.On("Send", mock.Anything, mock.Anything).Return("", errors.New("provider down"))
		m.emailLogRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *billing.EmailLog) bool {
			return l.Status == billing.EmailStatusFailed && l.ErrorMessage == "provider down"
		})).Return(nil)

		resp, err := svc.Send(context.Background(), org.ID, inv.ID)

		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		assert.Equal(t, "INV-0007", resp.InvoiceNumber)
		m.emailLogRepo.AssertExpectations(t)
	})

	t.Run("duplicate send is suppressed", func(t *testing.T) {
		svc, m, org, _, inv := setup(t)

		m.idem.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		resp, err := svc.Send(context.Background(), org.ID, inv.ID)

		require.NoError(t, err)
		assert.Equal(t, "draft", resp.Status)
		m.orgRepo.AssertNotCalled(t, "AllocateInvoiceSequence", mock.Anything, mock.Anything)
		m.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("client without email fails before numbering", func(t *testing.T) {
		svc, m := newTestService(t)
		org := testOrg(t)
		client, err := partner.NewClient(org.ID, "No Mail", "USD")
		require.NoError(t, err)
		inv := draftInvoice(t, org.ID, client.ID, true)

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, org.ID).Return(inv, nil)
		m.clientRepo.On("FindByIDForOrg", mock.Anything, org.ID, client.ID).Return(client, nil)

		_, err = svc.Send(context.Background(), org.ID, inv.ID)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidation, de.Code)
		m.orgRepo.AssertNotCalled(t, "AllocateInvoiceSequence", mock.Anything, mock.Anything)
	})

	t.Run("invoice without items fails before numbering", func(t *testing.T) {
		svc, m := newTestService(t)
		org := testOrg(t)
		client := testClient(t, org.ID)
		inv := draftInvoice(t, org.ID, client.ID, false)

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, org.ID).Return(inv, nil)

		_, err := svc.Send(context.Background(), org.ID, inv.ID)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeInvalidState, de.Code)
		m.orgRepo.AssertNotCalled(t, "AllocateInvoiceSequence", mock.Anything, mock.Anything)
	})

	t.Run("already sent invoice fails before numbering", func(t *testing.T) {
		svc, m := newTestService(t)
		org := testOrg(t)
		client := testClient(t, org.ID)
		inv := draftInvoice(t, org.ID, client.ID, true)
		require.NoError(t, inv.Send("INV-0001"))
		inv.ClearDomainEvents()

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, org.ID).Return(inv, nil)

		_, err := svc.Send(context.Background(), org.ID, inv.ID)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeInvalidState, de.Code)
		m.orgRepo.AssertNotCalled(t, "AllocateInvoiceSequence", mock.Anything, mock.Anything)
		m.idem.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed save releases the dedup claim", func(t *testing.T) {
		svc, m, org, _, inv := setup(t)
		key := "invoice:send:" + inv.ID.String()

		m.idem.On("MarkProcessed", mock.Anything, key, mock.Anything).Return(true, nil)
		m.orgRepo.On("AllocateInvoiceSequence", mock.Anything, org.ID).Return(int64(3), nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(shared.ErrConcurrencyConflict)
		m.idem.On("Release", mock.Anything, key).Return(nil)

		_, err := svc.Send(context.Background(), org.ID, inv.ID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		m.idem.AssertCalled(t, "Release", mock.Anything, key)
		m.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("retry after a failed send goes through", func(t *testing.T) {
		m := &serviceMocks{
			invoiceRepo:  new(MockInvoiceRepository),
			emailLogRepo: new(MockEmailLogRepository),
			orgRepo:      new(MockOrganizationRepository),
			clientRepo:   new(MockClientRepository),
			pdf:          new(MockPDFRenderer),
			storage:      new(MockObjectStorage),
			email:        new(MockEmailSender),
		}
		store := newFakeIdemStore()
		svc := NewInvoiceService(
			m.invoiceRepo, m.emailLogRepo, m.orgRepo, m.clientRepo,
			m.pdf, m.storage, m.email, store, zap.NewNop(),
		)

		org := testOrg(t)
		client := testClient(t, org.ID)
		first := draftInvoice(t, org.ID, client.ID, true)
		// the conflicted attempt's in-memory state is discarded; the retry
		// reloads the draft as the database still has it
		fresh := draftInvoice(t, org.ID, client.ID, true)
		fresh.ID = first.ID

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, first.ID, org.ID).Return(first, nil).Once()
		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, first.ID, org.ID).Return(fresh, nil)
		m.clientRepo.On("FindByIDForOrg", mock.Anything, org.ID, client.ID).Return(client, nil)
		m.orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		m.orgRepo.On("AllocateInvoiceSequence", mock.Anything, org.ID).Return(int64(3), nil).Once()
		m.orgRepo.On("AllocateInvoiceSequence", mock.Anything, org.ID).Return(int64(4), nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, first).Return(shared.ErrConcurrencyConflict)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, fresh).Return(nil)
		m.emailLogRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		m.pdf.On("RenderInvoice", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
		m.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn.example.com/inv.pdf", nil)
		m.invoiceRepo.On("Save", mock.Anything, fresh).Return(nil)
		m.email.On("Send", mock.Anything, mock.Anything).Return("re_retry", nil)
		m.emailLogRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Send(context.Background(), org.ID, first.ID)
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		resp, err := svc.Send(context.Background(), org.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		assert.Equal(t, "INV-0004", resp.InvoiceNumber)
		m.email.AssertNumberOfCalls(t, "Send", 1)
	})
}

func TestInvoiceService_MarkPaid(t *testing.T) {
	t.Run("records full payment", func(t *testing.T) {
		svc, m := newTestService(t)
		orgID := uuid.New()
		inv := draftInvoice(t, orgID, uuid.New(), true)
		require.NoError(t, inv.Send("INV-0001"))
		inv.ClearDomainEvents()

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, orgID).Return(inv, nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

		resp, err := svc.MarkPaid(context.Background(), orgID, inv.ID, MarkPaidRequest{})

		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		assert.True(t, resp.BalanceDue.IsZero())
	})

	t.Run("concurrency conflict propagates", func(t *testing.T) {
		svc, m := newTestService(t)
		orgID := uuid.New()
		inv := draftInvoice(t, orgID, uuid.New(), true)
		require.NoError(t, inv.Send("INV-0001"))

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, orgID).Return(inv, nil)
		m.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(shared.ErrConcurrencyConflict)

		_, err := svc.MarkPaid(context.Background(), orgID, inv.ID, MarkPaidRequest{})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	t.Run("draft can be deleted", func(t *testing.T) {
		svc, m := newTestService(t)
		orgID := uuid.New()
		inv := draftInvoice(t, orgID, uuid.New(), true)

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, orgID).Return(inv, nil)
		m.invoiceRepo.On("DeleteForOrg", mock.Anything, inv.ID, orgID).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), orgID, inv.ID))
	})

	t.Run("sent cannot be deleted", func(t *testing.T) {
		svc, m := newTestService(t)
		orgID := uuid.New()
		inv := draftInvoice(t, orgID, uuid.New(), true)
		require.NoError(t, inv.Send("INV-0001"))

		m.invoiceRepo.On("FindByIDForOrg", mock.Anything, inv.ID, orgID).Return(inv, nil)

		err := svc.Delete(context.Background(), orgID, inv.ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeInvalidState, de.Code)
		m.invoiceRepo.AssertNotCalled(t, "DeleteForOrg", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_SweepOverdue(t *testing.T) {
	svc, m := newTestService(t)
	orgID := uuid.New()

	past := draftInvoice(t, orgID, uuid.New(), true)
	require.NoError(t, past.Send("INV-0001"))
	past.DueDate = time.Now().AddDate(0, 0, -10)
	past.ClearDomainEvents()

	m.invoiceRepo.On("FindOverdueForOrg", mock.Anything, orgID, mock.Anything).Return([]billing.Invoice{*past}, nil)
	m.invoiceRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(inv *billing.Invoice) bool {
		return inv.Status == billing.StatusOverdue
	})).Return(nil)

	updated, err := svc.SweepOverdue(context.Background(), orgID)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	m.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_List(t *testing.T) {
	svc, m := newTestService(t)
	orgID := uuid.New()
	clientID := uuid.New()

	inv := draftInvoice(t, orgID, clientID, true)
	page := shared.NewPaginated([]billing.Invoice{*inv}, 1, 1, 20)

	m.invoiceRepo.On("FindAllForOrg", mock.Anything, orgID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "draft"
	})).Return(&page, nil)
	m.clientRepo.On("FindNamesByIDs", mock.Anything, orgID, []uuid.UUID{clientID}).
		Return(map[uuid.UUID]string{clientID: "Jane Doe"}, nil)

	result, err := svc.List(context.Background(), orgID, InvoiceListFilter{Status: "draft"})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Jane Doe", result.Items[0].ClientName)

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := svc.List(context.Background(), orgID, InvoiceListFilter{Status: "archived"})
		assert.Error(t, err)
	})
}

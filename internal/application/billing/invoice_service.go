package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles the invoice lifecycle: drafting, numbering,
// delivery, payment and the overdue sweep.
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	emailLogRepo billing.EmailLogRepository
	orgRepo      identity.OrganizationRepository
	clientRepo   partner.ClientRepository

	pdf     PDFRenderer
	storage ObjectStorage
	email   EmailSender
	idem    shared.IdempotencyStore
	idemCfg shared.IdempotencyConfig

	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	paymentTolerance decimal.Decimal
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	emailLogRepo billing.EmailLogRepository,
	orgRepo identity.OrganizationRepository,
	clientRepo partner.ClientRepository,
	pdf PDFRenderer,
	storage ObjectStorage,
	email EmailSender,
	idem shared.IdempotencyStore,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:      invoiceRepo,
		emailLogRepo:     emailLogRepo,
		orgRepo:          orgRepo,
		clientRepo:       clientRepo,
		pdf:              pdf,
		storage:          storage,
		email:            email,
		idem:             idem,
		idemCfg:          shared.DefaultIdempotencyConfig(),
		logger:           logger,
		paymentTolerance: billing.DefaultPaymentTolerance,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPaymentTolerance overrides the overpayment slack accepted by MarkPaid
func (s *InvoiceService) SetPaymentTolerance(tolerance decimal.Decimal) {
	s.paymentTolerance = tolerance
}

// SetSendIdempotencyTTL overrides the dedup window for concurrent sends
func (s *InvoiceService) SetSendIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idemCfg.TTL = ttl
	}
}

// Create creates a new draft invoice. The client must belong to the
// organization; dates and currency fall back to organization defaults.
func (s *InvoiceService) Create(ctx context.Context, orgID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByIDForOrg(ctx, orgID, req.ClientID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = string(client.Currency)
	}
	if currency == "" {
		currency = string(org.Currency)
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := org.DueDateFor(issueDate)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	inv, err := billing.NewInvoice(orgID, client.ID, currency, issueDate, dueDate)
	if err != nil {
		return nil, err
	}
	inv.Notes = req.Notes
	inv.Terms = req.Terms
	inv.Footer = req.Footer

	for _, in := range req.Items {
		if _, err := inv.AddItem(s.toDomainItemInput(in, org)); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)

	resp := ToInvoiceResponse(inv, time.Now())
	resp.ClientName = client.DisplayName()
	return &resp, nil
}

// toDomainItemInput applies the organization default tax rate when the
// request omits one
func (s *InvoiceService) toDomainItemInput(in InvoiceItemInput, org *identity.Organization) billing.ItemInput {
	taxRate := in.TaxRate
	if taxRate.IsZero() && !org.DefaultTaxRate.IsZero() {
		taxRate = org.DefaultTaxRate
	}
	return billing.ItemInput{
		ProductID:       in.ProductID,
		Description:     in.Description,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		TaxRate:         taxRate,
		DiscountPercent: in.DiscountPercent,
	}
}

// GetByID retrieves an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, orgID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, time.Now())
	if client, err := s.clientRepo.FindByIDForOrg(ctx, orgID, inv.ClientID); err == nil {
		resp.ClientName = client.DisplayName()
	}
	return &resp, nil
}

// List retrieves invoices with filtering and pagination, resolving client
// display names in one batched lookup
func (s *InvoiceService) List(ctx context.Context, orgID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("status", "unknown invoice status")
		}
		f.Filters["status"] = string(status)
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, shared.NewValidationError("client_id", "must be a valid UUID")
		}
		f.Filters["client_id"] = clientID
	}

	page, err := s.invoiceRepo.FindAllForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	clientIDs := make([]uuid.UUID, 0, len(page.Items))
	seen := make(map[uuid.UUID]bool)
	for i := range page.Items {
		if !seen[page.Items[i].ClientID] {
			seen[page.Items[i].ClientID] = true
			clientIDs = append(clientIDs, page.Items[i].ClientID)
		}
	}
	names, err := s.clientRepo.FindNamesByIDs(ctx, orgID, clientIDs)
	if err != nil {
		s.logger.Warn("resolving client names failed", zap.Error(err))
		names = map[uuid.UUID]string{}
	}

	now := time.Now()
	items := make([]InvoiceListItemResponse, 0, len(page.Items))
	for i := range page.Items {
		inv := &page.Items[i]
		items = append(items, ToInvoiceListItemResponse(inv, names[inv.ClientID], now))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Update changes the header fields of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, orgID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}

	if req.ClientID != nil {
		if _, err := s.clientRepo.FindByIDForOrg(ctx, orgID, *req.ClientID); err != nil {
			return nil, err
		}
		if err := inv.ChangeClient(*req.ClientID); err != nil {
			return nil, err
		}
	}

	issueDate, dueDate := time.Time{}, time.Time{}
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}
	notes, terms, footer := inv.Notes, inv.Terms, inv.Footer
	if req.Notes != nil {
		notes = *req.Notes
	}
	if req.Terms != nil {
		terms = *req.Terms
	}
	if req.Footer != nil {
		footer = *req.Footer
	}
	if err := inv.UpdateDetails(issueDate, dueDate, notes, terms, footer); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, time.Now())
	return &resp, nil
}

// Delete removes a draft invoice and its items. Sent invoices are part of
// the books and cannot be deleted.
func (s *InvoiceService) Delete(ctx context.Context, orgID, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return err
	}
	if !inv.CanModify() {
		return shared.NewInvalidStateError("only draft invoices can be deleted")
	}
	return s.invoiceRepo.DeleteForOrg(ctx, invoiceID, orgID)
}

// AddItem appends a line item to a draft invoice
func (s *InvoiceService) AddItem(ctx context.Context, orgID, invoiceID uuid.UUID, in InvoiceItemInput) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if _, err := inv.AddItem(s.toDomainItemInput(in, org)); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, time.Now())
	return &resp, nil
}

// UpdateItem changes one line item of a draft invoice
func (s *InvoiceService) UpdateItem(ctx context.Context, orgID, invoiceID, itemID uuid.UUID, in InvoiceItemInput) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	if err := inv.UpdateItem(itemID, billing.ItemInput{
		ProductID:       in.ProductID,
		Description:     in.Description,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		TaxRate:         in.TaxRate,
		DiscountPercent: in.DiscountPercent,
	}); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, time.Now())
	return &resp, nil
}

// RemoveItem deletes one line item from a draft invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, orgID, invoiceID, itemID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	if err := inv.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, time.Now())
	return &resp, nil
}

// Send finalizes a draft invoice and emails it to the client. The number
// is drawn from the organization sequence exactly once; the state change
// commits before delivery, and a delivery failure is recorded in the email
// log without rolling the invoice back.
func (s *InvoiceService) Send(ctx context.Context, orgID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	// every check runs before a sequence value is claimed, so a rejected
	// send never burns a number
	if !inv.Status.CanTransitionTo(billing.StatusSent) {
		return nil, shared.NewInvalidStateError("cannot send invoice in status " + inv.Status.String())
	}
	if len(inv.Items) == 0 {
		return nil, shared.NewInvalidStateError("cannot send invoice without items")
	}
	client, err := s.clientRepo.FindByIDForOrg(ctx, orgID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.HasEmail() {
		return nil, shared.NewValidationError("client", "client has no email address")
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var claimedKey string
	if s.idemCfg.Enabled && s.idem != nil {
		key := fmt.Sprintf("invoice:send:%s", invoiceID)
		first, err := s.idem.MarkProcessed(ctx, key, s.idemCfg.TTL)
		if err != nil {
			s.logger.Warn("idempotency check failed, proceeding", zap.Error(err))
		} else if !first {
			resp := ToInvoiceResponse(inv, time.Now())
			resp.ClientName = client.DisplayName()
			return &resp, nil
		} else {
			claimedKey = key
		}
	}

	seq, err := s.orgRepo.AllocateInvoiceSequence(ctx, orgID)
	if err != nil {
		s.releaseSendClaim(ctx, claimedKey)
		return nil, err
	}
	if err := inv.Send(org.FormatInvoiceNumber(seq)); err != nil {
		s.releaseSendClaim(ctx, claimedKey)
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		s.releaseSendClaim(ctx, claimedKey)
		return nil, err
	}
	s.publishEvents(ctx, inv)

	s.deliver(ctx, inv, org, client)

	resp := ToInvoiceResponse(inv, time.Now())
	resp.ClientName = client.DisplayName()
	return &resp, nil
}

// releaseSendClaim gives back the dedup key after a failed send so the
// caller's retry is not swallowed by the guard
func (s *InvoiceService) releaseSendClaim(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idem.Release(ctx, key); err != nil {
		s.logger.Warn("releasing send idempotency key failed",
			zap.String("key", key), zap.Error(err))
	}
}

// Resend emails an already sent invoice again without changing its state
func (s *InvoiceService) Resend(ctx context.Context, orgID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByIDForOrg(ctx, orgID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.HasEmail() {
		return nil, shared.NewValidationError("client", "client has no email address")
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := inv.Resend(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	s.deliver(ctx, inv, org, client)

	resp := ToInvoiceResponse(inv, time.Now())
	resp.ClientName = client.DisplayName()
	return &resp, nil
}

// deliver renders the PDF, uploads it and emails the client. Every failure
// here is logged and recorded; the invoice state is already committed.
func (s *InvoiceService) deliver(ctx context.Context, inv *billing.Invoice, org *identity.Organization, client *partner.Client) {
	log, err := billing.NewEmailLog(inv.OrganizationID, &inv.ID, client.Email, fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, org.Name))
	if err != nil {
		s.logger.Error("creating email log failed", zap.Error(err))
		return
	}
	if err := s.emailLogRepo.Append(ctx, log); err != nil {
		s.logger.Error("persisting email log failed", zap.Error(err))
	}

	var pdfBytes []byte
	doc := buildInvoiceDocument(inv, org, client)
	pdfBytes, err = s.pdf.RenderInvoice(ctx, doc)
	if err != nil {
		s.logger.Error("rendering invoice pdf failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		pdfBytes = nil
	}

	if pdfBytes != nil {
		key := fmt.Sprintf("invoices/%s/%s.pdf", inv.OrganizationID, inv.ID)
		url, err := s.storage.Upload(ctx, key, pdfBytes, "application/pdf")
		if err != nil {
			s.logger.Error("uploading invoice pdf failed",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
		} else if inv.PDFURL != url {
			inv.PDFURL = url
			if err := s.invoiceRepo.Save(ctx, inv); err != nil {
				s.logger.Error("saving pdf url failed", zap.Error(err))
			}
		}
	}

	msg := EmailMessage{
		To:      client.Email,
		ReplyTo: org.Email,
		Subject: log.Subject,
		HTML:    renderInvoiceEmailHTML(inv, org, client),
	}
	if pdfBytes != nil {
		msg.AttachmentName = fmt.Sprintf("%s.pdf", inv.InvoiceNumber)
		msg.Attachment = pdfBytes
	}

	providerID, err := s.email.Send(ctx, msg)
	if err != nil {
		s.logger.Error("sending invoice email failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("recipient", client.Email),
			zap.Error(err))
		log.MarkFailed(err.Error())
	} else {
		log.MarkSent(providerID)
	}
	if err := s.emailLogRepo.Update(ctx, log); err != nil {
		s.logger.Error("updating email log failed", zap.Error(err))
	}
}

// MarkPaid records payment of a sent or overdue invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, orgID, invoiceID uuid.UUID, req MarkPaidRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	if err := inv.MarkPaid(req.Amount, req.PaidAt, s.paymentTolerance); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	resp := ToInvoiceResponse(inv, time.Now())
	return &resp, nil
}

// Cancel voids a draft invoice
func (s *InvoiceService) Cancel(ctx context.Context, orgID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	resp := ToInvoiceResponse(inv, time.Now())
	return &resp, nil
}

// SweepOverdue stamps every sent invoice past due with an outstanding
// balance, so the stored status matches the read-time classification.
// Returns the number of invoices updated.
func (s *InvoiceService) SweepOverdue(ctx context.Context, orgID uuid.UUID) (int, error) {
	now := time.Now()
	overdue, err := s.invoiceRepo.FindOverdueForOrg(ctx, orgID, now)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range overdue {
		inv := &overdue[i]
		if inv.Status == billing.StatusOverdue {
			continue
		}
		if err := inv.MarkOverdue(now); err != nil {
			s.logger.Warn("skipping invoice in sweep",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			s.logger.Warn("saving swept invoice failed",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		s.publishEvents(ctx, inv)
		updated++
	}
	return updated, nil
}

// EmailHistory lists the delivery attempts for an invoice
func (s *InvoiceService) EmailHistory(ctx context.Context, orgID, invoiceID uuid.UUID) ([]EmailLogResponse, error) {
	if _, err := s.invoiceRepo.FindByIDForOrg(ctx, invoiceID, orgID); err != nil {
		return nil, err
	}
	logs, err := s.emailLogRepo.FindByInvoiceForOrg(ctx, invoiceID, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]EmailLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, ToEmailLogResponse(&logs[i]))
	}
	return out, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, inv *billing.Invoice) {
	if s.eventPublisher == nil {
		inv.ClearDomainEvents()
		return
	}
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("publishing domain events failed", zap.Error(err))
	}
	inv.ClearDomainEvents()
}

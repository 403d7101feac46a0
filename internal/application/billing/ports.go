package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDocument carries everything the PDF layout needs, already resolved
// so the renderer stays free of repository access
type InvoiceDocument struct {
	InvoiceNumber string
	Status        string
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string

	OrgName    string
	OrgAddress string
	OrgEmail   string
	OrgPhone   string
	OrgTaxID   string
	LogoURL    string

	ClientName    string
	ClientAddress string
	ClientEmail   string
	ClientTaxID   string

	Lines []DocumentLine

	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	BalanceDue    decimal.Decimal

	Notes  string
	Terms  string
	Footer string
}

// DocumentLine is one rendered invoice row
type DocumentLine struct {
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
	Total           decimal.Decimal
}

// PDFRenderer renders an invoice document into PDF bytes
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// ObjectStorage persists generated artifacts (invoice PDFs, logos) and
// returns a URL the API can hand to clients
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// EmailMessage is a single outbound email with an optional PDF attachment
type EmailMessage struct {
	To             string
	ReplyTo        string
	Subject        string
	HTML           string
	AttachmentName string
	Attachment     []byte
}

// EmailSender delivers email through the configured provider. Send returns
// the provider's message ID for the delivery log.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

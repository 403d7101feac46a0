package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats is the headline numbers block
type DashboardStats struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	PaidLast30Days   decimal.Decimal `json:"paid_last_30_days"`
	DraftCount       int64           `json:"draft_count"`
	SentCount        int64           `json:"sent_count"`
	OverdueCount     int64           `json:"overdue_count"`
	PaidCount        int64           `json:"paid_count"`
	ActiveClients    int64           `json:"active_clients"`
}

// MonthlyRevenue is one month of collected revenue
type MonthlyRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
}

// OutstandingInvoice is one unpaid invoice in the outstanding view,
// ordered most overdue first
type OutstandingInvoice struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	DueDate       time.Time       `json:"due_date"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	DaysOverdue   int             `json:"days_overdue"`
	Status        string          `json:"status"`
}

// ActivityEntry is one row of the recent activity feed
type ActivityEntry struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	ClientName    string          `json:"client_name"`
	Status        string          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ExportRow is one invoice flattened for CSV export
type ExportRow struct {
	InvoiceNumber string
	ClientName    string
	Status        string
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	BalanceDue    decimal.Decimal
}

// ReportRepository runs the aggregate read queries behind the dashboard.
// Overdue classification uses the read-time predicate, not the stored
// status, so figures are correct even before the sweep has run.
type ReportRepository interface {
	Stats(ctx context.Context, orgID uuid.UUID, asOf time.Time) (*DashboardStats, error)
	RevenueByMonth(ctx context.Context, orgID uuid.UUID, months int) ([]MonthlyRevenue, error)
	OutstandingInvoices(ctx context.Context, orgID uuid.UUID, asOf time.Time, limit int) ([]OutstandingInvoice, error)
	RecentActivity(ctx context.Context, orgID uuid.UUID, limit int) ([]ActivityEntry, error)
	InvoicesForExport(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ExportRow, error)
}

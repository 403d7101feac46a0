package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	defaultRevenueMonths = 12
	maxRevenueMonths     = 36
	defaultListLimit     = 10
	maxListLimit         = 100
)

// DashboardService serves the reporting read side
type DashboardService struct {
	reportRepo ReportRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(reportRepo ReportRepository) *DashboardService {
	return &DashboardService{reportRepo: reportRepo}
}

// Stats returns the headline numbers as of now
func (s *DashboardService) Stats(ctx context.Context, orgID uuid.UUID) (*DashboardStats, error) {
	return s.reportRepo.Stats(ctx, orgID, time.Now())
}

// Revenue returns collected revenue per month, oldest first
func (s *DashboardService) Revenue(ctx context.Context, orgID uuid.UUID, months int) ([]MonthlyRevenue, error) {
	if months <= 0 {
		months = defaultRevenueMonths
	}
	if months > maxRevenueMonths {
		months = maxRevenueMonths
	}
	return s.reportRepo.RevenueByMonth(ctx, orgID, months)
}

// Outstanding returns unpaid invoices ranked most overdue first
func (s *DashboardService) Outstanding(ctx context.Context, orgID uuid.UUID, limit int) ([]OutstandingInvoice, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.reportRepo.OutstandingInvoices(ctx, orgID, time.Now(), limit)
}

// Activity returns the recent invoice activity feed
func (s *DashboardService) Activity(ctx context.Context, orgID uuid.UUID, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.reportRepo.RecentActivity(ctx, orgID, limit)
}

// ExportCSV renders the organization's invoices in a date range as CSV.
// The range is inclusive; an empty range defaults to the trailing year.
func (s *DashboardService) ExportCSV(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]byte, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 0)
	}
	if to.Before(from) {
		return nil, shared.NewValidationError("to", "cannot be before from")
	}

	rows, err := s.reportRepo.InvoicesForExport(ctx, orgID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"invoice_number", "client", "status", "issue_date", "due_date",
		"currency", "subtotal", "discount", "tax", "total", "amount_paid", "balance_due",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.InvoiceNumber,
			r.ClientName,
			r.Status,
			r.IssueDate.Format("2006-01-02"),
			r.DueDate.Format("2006-01-02"),
			r.Currency,
			r.Subtotal.StringFixed(2),
			r.DiscountTotal.StringFixed(2),
			r.TaxTotal.StringFixed(2),
			r.Total.StringFixed(2),
			r.AmountPaid.StringFixed(2),
			r.BalanceDue.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package persistence

import (
	"context"
	"time"

	"github.com/invoicing/backend/internal/application/report"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements ReportRepository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// overdueCond is the read-time overdue predicate. An invoice counts as
// overdue when it was swept already, or when it is sent, past due at day
// granularity and not settled. Keeping the predicate in the query means the
// dashboard is correct even before the sweep has run.
const overdueCond = `(status = 'overdue' OR (status = 'sent' AND due_date < ? AND amount_paid < total))`

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Stats returns the headline dashboard numbers
func (r *GormReportRepository) Stats(ctx context.Context, orgID uuid.UUID, asOf time.Time) (*report.DashboardStats, error) {
	day := dayStart(asOf)

	type statsResult struct {
		TotalOutstanding decimal.Decimal
		TotalOverdue     decimal.Decimal
		DraftCount       int64
		SentCount        int64
		OverdueCount     int64
		PaidCount        int64
	}

	var res statsResult
	err := r.db.WithContext(ctx).Table("invoices").
		Select(`
			COALESCE(SUM(CASE WHEN status IN ('sent', 'overdue') THEN total - amount_paid ELSE 0 END), 0) as total_outstanding,
			COALESCE(SUM(CASE WHEN `+overdueCond+` THEN total - amount_paid ELSE 0 END), 0) as total_overdue,
			COUNT(*) FILTER (WHERE status = 'draft') as draft_count,
			COUNT(*) FILTER (WHERE status = 'sent' AND NOT `+overdueCond+`) as sent_count,
			COUNT(*) FILTER (WHERE `+overdueCond+`) as overdue_count,
			COUNT(*) FILTER (WHERE status = 'paid') as paid_count
		`, day, day, day).
		Where("organization_id = ?", orgID).
		Scan(&res).Error
	if err != nil {
		return nil, err
	}

	var paidLast30 decimal.Decimal
	err = r.db.WithContext(ctx).Table("invoices").
		Select("COALESCE(SUM(amount_paid), 0)").
		Where("organization_id = ? AND status = ? AND paid_at >= ?",
			orgID, billing.StatusPaid, asOf.AddDate(0, 0, -30)).
		Scan(&paidLast30).Error
	if err != nil {
		return nil, err
	}

	var activeClients int64
	err = r.db.WithContext(ctx).Table("clients").
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Count(&activeClients).Error
	if err != nil {
		return nil, err
	}

	return &report.DashboardStats{
		TotalOutstanding: res.TotalOutstanding,
		TotalOverdue:     res.TotalOverdue,
		PaidLast30Days:   paidLast30,
		DraftCount:       res.DraftCount,
		SentCount:        res.SentCount,
		OverdueCount:     res.OverdueCount,
		PaidCount:        res.PaidCount,
		ActiveClients:    activeClients,
	}, nil
}

// RevenueByMonth returns collected revenue per month for the trailing window.
// Months without payments are filled with zero so charts render evenly.
func (r *GormReportRepository) RevenueByMonth(ctx context.Context, orgID uuid.UUID, months int) ([]report.MonthlyRevenue, error) {
	type monthResult struct {
		Month   string
		Revenue decimal.Decimal
	}

	since := time.Now().UTC().AddDate(0, -(months - 1), 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	var rows []monthResult
	err := r.db.WithContext(ctx).Table("invoices").
		Select(`to_char(paid_at, 'YYYY-MM') as month, COALESCE(SUM(amount_paid), 0) as revenue`).
		Where("organization_id = ? AND status = ? AND paid_at >= ?",
			orgID, billing.StatusPaid, since).
		Group("to_char(paid_at, 'YYYY-MM')").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.Revenue
	}

	result := make([]report.MonthlyRevenue, 0, months)
	cursor := since
	for i := 0; i < months; i++ {
		key := cursor.Format("2006-01")
		revenue, ok := byMonth[key]
		if !ok {
			revenue = decimal.Zero
		}
		result = append(result, report.MonthlyRevenue{Month: key, Revenue: revenue})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return result, nil
}

// OutstandingInvoices returns unpaid invoices, most overdue first
func (r *GormReportRepository) OutstandingInvoices(ctx context.Context, orgID uuid.UUID, asOf time.Time, limit int) ([]report.OutstandingInvoice, error) {
	day := dayStart(asOf)

	type outstandingRow struct {
		InvoiceID     uuid.UUID
		InvoiceNumber string
		ClientName    string
		CompanyName   string
		DueDate       time.Time
		BalanceDue    decimal.Decimal
		Status        string
	}

	var rows []outstandingRow
	err := r.db.WithContext(ctx).Table("invoices i").
		Select(`
			i.id as invoice_id,
			i.invoice_number,
			c.name as client_name,
			c.company_name,
			i.due_date,
			i.total - i.amount_paid as balance_due,
			i.status
		`).
		Joins("JOIN clients c ON c.id = i.client_id").
		Where("i.organization_id = ? AND i.status IN ('sent', 'overdue') AND i.amount_paid < i.total", orgID).
		Order("i.due_date ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]report.OutstandingInvoice, len(rows))
	for i, row := range rows {
		name := row.ClientName
		if row.CompanyName != "" {
			name = row.CompanyName
		}
		status := row.Status
		daysOverdue := 0
		due := dayStart(row.DueDate)
		if due.Before(day) {
			daysOverdue = int(day.Sub(due).Hours() / 24)
			status = string(billing.StatusOverdue)
		}
		result[i] = report.OutstandingInvoice{
			InvoiceID:     row.InvoiceID,
			InvoiceNumber: row.InvoiceNumber,
			ClientName:    name,
			DueDate:       row.DueDate,
			BalanceDue:    row.BalanceDue,
			DaysOverdue:   daysOverdue,
			Status:        status,
		}
	}
	return result, nil
}

// RecentActivity returns the latest invoice changes, newest first
func (r *GormReportRepository) RecentActivity(ctx context.Context, orgID uuid.UUID, limit int) ([]report.ActivityEntry, error) {
	type activityRow struct {
		InvoiceID     uuid.UUID
		InvoiceNumber string
		ClientName    string
		CompanyName   string
		Status        string
		Total         decimal.Decimal
		OccurredAt    time.Time
	}

	var rows []activityRow
	err := r.db.WithContext(ctx).Table("invoices i").
		Select(`
			i.id as invoice_id,
			i.invoice_number,
			c.name as client_name,
			c.company_name,
			i.status,
			i.total,
			i.updated_at as occurred_at
		`).
		Joins("JOIN clients c ON c.id = i.client_id").
		Where("i.organization_id = ?", orgID).
		Order("i.updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]report.ActivityEntry, len(rows))
	for i, row := range rows {
		name := row.ClientName
		if row.CompanyName != "" {
			name = row.CompanyName
		}
		result[i] = report.ActivityEntry{
			InvoiceID:     row.InvoiceID,
			InvoiceNumber: row.InvoiceNumber,
			ClientName:    name,
			Status:        row.Status,
			Total:         row.Total,
			OccurredAt:    row.OccurredAt,
		}
	}
	return result, nil
}

// InvoicesForExport returns invoices issued in the window, flattened for CSV
func (r *GormReportRepository) InvoicesForExport(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]report.ExportRow, error) {
	type exportRow struct {
		InvoiceNumber string
		ClientName    string
		CompanyName   string
		Status        string
		IssueDate     time.Time
		DueDate       time.Time
		Currency      string
		Subtotal      decimal.Decimal
		DiscountTotal decimal.Decimal
		TaxTotal      decimal.Decimal
		Total         decimal.Decimal
		AmountPaid    decimal.Decimal
	}

	var rows []exportRow
	err := r.db.WithContext(ctx).Table("invoices i").
		Select(`
			i.invoice_number,
			c.name as client_name,
			c.company_name,
			i.status,
			i.issue_date,
			i.due_date,
			i.currency,
			i.subtotal,
			i.discount_total,
			i.tax_total,
			i.total,
			i.amount_paid
		`).
		Joins("JOIN clients c ON c.id = i.client_id").
		Where("i.organization_id = ? AND i.issue_date >= ? AND i.issue_date <= ?", orgID, from, to).
		Order("i.issue_date ASC, i.invoice_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]report.ExportRow, len(rows))
	for i, row := range rows {
		name := row.ClientName
		if row.CompanyName != "" {
			name = row.CompanyName
		}
		result[i] = report.ExportRow{
			InvoiceNumber: row.InvoiceNumber,
			ClientName:    name,
			Status:        row.Status,
			IssueDate:     row.IssueDate,
			DueDate:       row.DueDate,
			Currency:      row.Currency,
			Subtotal:      row.Subtotal,
			DiscountTotal: row.DiscountTotal,
			TaxTotal:      row.TaxTotal,
			Total:         row.Total,
			AmountPaid:    row.AmountPaid,
			BalanceDue:    row.Total.Sub(row.AmountPaid),
		}
	}
	return result, nil
}

// Ensure GormReportRepository implements ReportRepository
var _ report.ReportRepository = (*GormReportRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForOrg finds an invoice by ID within an organization
func (r *GormInvoiceRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForOrg lists invoices for an organization with filtering and pagination
func (r *GormInvoiceRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	base := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("organization_id = ?", organizationID)

	var total int64
	if err := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []billing.Invoice
	if err := r.applyFilter(base.Session(&gorm.Session{}), filter).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	result := shared.NewPaginated(invoices, total, page, pageSize)
	return &result, nil
}

// FindOverdueForOrg returns sent invoices that are past due with an
// outstanding balance as of the given day. Comparison is at day
// granularity: an invoice due today is not yet overdue.
func (r *GormInvoiceRepository) FindOverdueForOrg(ctx context.Context, organizationID uuid.UUID, asOf time.Time) ([]billing.Invoice, error) {
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	var invoices []billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("organization_id = ? AND status = ? AND due_date < ? AND amount_paid < total",
			organizationID, billing.StatusSent, dayStart).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountForOrg counts invoices in the given statuses, all when none are given
func (r *GormInvoiceRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, statuses ...billing.InvoiceStatus) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("organization_id = ?", organizationID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice and reconciles its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		return r.reconcileItems(tx, invoice)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&billing.Invoice{}).
			Where("organization_id = ? AND id = ?", invoice.OrganizationID, invoice.ID).
			Select("version").
			Take(&currentVersion).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != invoice.Version {
			return shared.ErrConcurrencyConflict
		}

		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"invoice_number": invoice.InvoiceNumber,
				"client_id":      invoice.ClientID,
				"status":         invoice.Status,
				"issue_date":     invoice.IssueDate,
				"due_date":       invoice.DueDate,
				"currency":       invoice.Currency,
				"subtotal":       invoice.Subtotal,
				"discount_total": invoice.DiscountTotal,
				"tax_total":      invoice.TaxTotal,
				"total":          invoice.Total,
				"amount_paid":    invoice.AmountPaid,
				"notes":          invoice.Notes,
				"terms":          invoice.Terms,
				"footer":         invoice.Footer,
				"pdf_url":        invoice.PDFURL,
				"sent_at":        invoice.SentAt,
				"paid_at":        invoice.PaidAt,
				"cancelled_at":   invoice.CancelledAt,
				"version":        invoice.Version,
				"updated_at":     invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.reconcileItems(tx, invoice)
	})
}

// reconcileItems deletes removed items and saves the current ones
func (r *GormInvoiceRepository) reconcileItems(tx *gorm.DB, invoice *billing.Invoice) error {
	currentItemIDs := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentItemIDs).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteForOrg deletes an invoice and its items
func (r *GormInvoiceRepository) DeleteForOrg(ctx context.Context, id, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice billing.Invoice
		if err := tx.Where("organization_id = ? AND id = ?", organizationID, id).
			First(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("invoice_id = ?", id).Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&billing.Invoice{}, "organization_id = ? AND id = ?", organizationID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date <= ?", t)
			}
		}
	}

	return query
}

// OrganizationIDsWithOpenInvoices lists organizations that currently have
// sent invoices; the overdue sweep only needs to visit these
func (r *GormInvoiceRepository) OrganizationIDsWithOpenInvoices(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Distinct("organization_id").
		Where("status = ?", billing.StatusSent).
		Pluck("organization_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)

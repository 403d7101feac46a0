package persistence

import (
	"context"
	"strings"

	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmailLogRepository implements EmailLogRepository using GORM
type GormEmailLogRepository struct {
	db *gorm.DB
}

// NewGormEmailLogRepository creates a new GormEmailLogRepository
func NewGormEmailLogRepository(db *gorm.DB) *GormEmailLogRepository {
	return &GormEmailLogRepository{db: db}
}

// Append inserts a new delivery attempt record
func (r *GormEmailLogRepository) Append(ctx context.Context, log *billing.EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Update persists status changes to an existing record
func (r *GormEmailLogRepository) Update(ctx context.Context, log *billing.EmailLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// FindByInvoiceForOrg returns all delivery attempts for an invoice, newest first
func (r *GormEmailLogRepository) FindByInvoiceForOrg(ctx context.Context, invoiceID, organizationID uuid.UUID) ([]billing.EmailLog, error) {
	var logs []billing.EmailLog
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND invoice_id = ?", organizationID, invoiceID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindAllForOrg lists delivery attempts for an organization with pagination
func (r *GormEmailLogRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.EmailLog], error) {
	base := r.db.WithContext(ctx).
		Model(&billing.EmailLog{}).
		Where("organization_id = ?", organizationID)

	var total int64
	if err := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []billing.EmailLog
	query := r.applyFilterWithoutPagination(base.Session(&gorm.Session{}), filter)
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
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	result := shared.NewPaginated(logs, total, page, pageSize)
	return &result, nil
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormEmailLogRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("recipient_email ILIKE ? OR subject ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		}
	}

	return query
}

// Ensure GormEmailLogRepository implements EmailLogRepository
var _ billing.EmailLogRepository = (*GormEmailLogRepository)(nil)

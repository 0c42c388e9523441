package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormQuotationRepository implements sales.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

var _ sales.QuotationRepository = (*GormQuotationRepository)(nil)

// Save creates or updates a quotation together with its items.
func (r *GormQuotationRepository) Save(ctx context.Context, quotation *sales.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(quotation).Error; err != nil {
			return err
		}
		return saveQuotationItems(tx, quotation)
	})
}

// SaveWithLock saves with an optimistic version check.
func (r *GormQuotationRepository) SaveWithLock(ctx context.Context, quotation *sales.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := quotation.Version
		quotation.Version++
		quotation.UpdatedAt = time.Now()

		result := tx.Model(&sales.Quotation{}).
			Where("id = ? AND version = ?", quotation.ID, currentVersion).
			Updates(map[string]interface{}{
				"subtotal":           quotation.Subtotal,
				"order_discount_pct": quotation.OrderDiscountPct,
				"discount_amount":    quotation.DiscountAmount,
				"tax_amount":         quotation.TaxAmount,
				"total":              quotation.Total,
				"expiry_date":        quotation.ExpiryDate,
				"status":             quotation.Status,
				"converted_sale_id":  quotation.ConvertedSaleID,
				"sent_at":            quotation.SentAt,
				"decided_at":         quotation.DecidedAt,
				"version":            quotation.Version,
				"updated_at":         quotation.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveQuotationItems(tx, quotation)
	})
}

func saveQuotationItems(tx *gorm.DB, quotation *sales.Quotation) error {
	currentIDs := make([]uuid.UUID, len(quotation.Items))
	for i, item := range quotation.Items {
		currentIDs[i] = item.ID
	}

	del := tx.Where("quotation_id = ?", quotation.ID)
	if len(currentIDs) > 0 {
		del = del.Where("id NOT IN ?", currentIDs)
	}
	if err := del.Delete(&sales.QuotationItem{}).Error; err != nil {
		return err
	}

	for i := range quotation.Items {
		quotation.Items[i].QuotationID = quotation.ID
		if err := tx.Save(&quotation.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a quotation by ID within a tenant
func (r *GormQuotationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Quotation, error) {
	var quotation sales.Quotation
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&quotation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quotation, nil
}

// FindAll lists quotations for a tenant with filtering and pagination
func (r *GormQuotationRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[sales.Quotation], error) {
	return paginate[sales.Quotation](filter, func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&sales.Quotation{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID)
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			query = query.Where("number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
		}
		return applyCommonFilters(query, filter)
	})
}

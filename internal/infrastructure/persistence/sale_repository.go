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

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)

// Save creates or updates a sale together with its items.
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(sale).Error; err != nil {
			return err
		}
		return saveSaleItems(tx, sale)
	})
}

// SaveWithLock saves with an optimistic version check.
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := sale.Version
		sale.Version++
		sale.UpdatedAt = time.Now()

		result := tx.Model(&sales.Sale{}).
			Where("id = ? AND version = ?", sale.ID, currentVersion).
			Updates(map[string]interface{}{
				"subtotal":           sale.Subtotal,
				"order_discount_pct": sale.OrderDiscountPct,
				"discount_amount":    sale.DiscountAmount,
				"tax_amount":         sale.TaxAmount,
				"total":              sale.Total,
				"amount_paid":        sale.AmountPaid,
				"amount_due":         sale.AmountDue,
				"status":             sale.Status,
				"quotation_id":       sale.QuotationID,
				"confirmed_at":       sale.ConfirmedAt,
				"completed_at":       sale.CompletedAt,
				"cancelled_at":       sale.CancelledAt,
				"version":            sale.Version,
				"updated_at":         sale.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveSaleItems(tx, sale)
	})
}

// saveSaleItems replaces the item set: rows dropped from the aggregate are
// deleted, the rest upserted.
func saveSaleItems(tx *gorm.DB, sale *sales.Sale) error {
	currentIDs := make([]uuid.UUID, len(sale.Items))
	for i, item := range sale.Items {
		currentIDs[i] = item.ID
	}

	del := tx.Where("sale_id = ?", sale.ID)
	if len(currentIDs) > 0 {
		del = del.Where("id NOT IN ?", currentIDs)
	}
	if err := del.Delete(&sales.SaleItem{}).Error; err != nil {
		return err
	}

	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		if err := tx.Save(&sale.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a sale by ID within a tenant
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByNumber finds a sale by document number within a tenant
func (r *GormSaleRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindAll lists sales for a tenant with filtering and pagination
func (r *GormSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[sales.Sale], error) {
	return paginate[sales.Sale](filter, func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&sales.Sale{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID)
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			query = query.Where("number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
		}
		return applyCommonFilters(query, filter)
	})
}

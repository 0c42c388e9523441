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

// GormLaybyRepository implements sales.LaybyRepository using GORM
type GormLaybyRepository struct {
	db *gorm.DB
}

// NewGormLaybyRepository creates a new GormLaybyRepository
func NewGormLaybyRepository(db *gorm.DB) *GormLaybyRepository {
	return &GormLaybyRepository{db: db}
}

var _ sales.LaybyRepository = (*GormLaybyRepository)(nil)

// Save creates or updates a layby together with its items.
func (r *GormLaybyRepository) Save(ctx context.Context, layby *sales.Layby) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(layby).Error; err != nil {
			return err
		}
		return saveLaybyItems(tx, layby)
	})
}

// SaveWithLock saves with an optimistic version check.
func (r *GormLaybyRepository) SaveWithLock(ctx context.Context, layby *sales.Layby) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := layby.Version
		layby.Version++
		layby.UpdatedAt = time.Now()

		result := tx.Model(&sales.Layby{}).
			Where("id = ? AND version = ?", layby.ID, currentVersion).
			Updates(map[string]interface{}{
				"subtotal":           layby.Subtotal,
				"order_discount_pct": layby.OrderDiscountPct,
				"discount_amount":    layby.DiscountAmount,
				"tax_amount":         layby.TaxAmount,
				"total":              layby.Total,
				"deposit_required":   layby.DepositRequired,
				"amount_paid":        layby.AmountPaid,
				"amount_due":         layby.AmountDue,
				"status":             layby.Status,
				"activated_at":       layby.ActivatedAt,
				"collected_at":       layby.CollectedAt,
				"cancelled_at":       layby.CancelledAt,
				"version":            layby.Version,
				"updated_at":         layby.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveLaybyItems(tx, layby)
	})
}

func saveLaybyItems(tx *gorm.DB, layby *sales.Layby) error {
	currentIDs := make([]uuid.UUID, len(layby.Items))
	for i, item := range layby.Items {
		currentIDs[i] = item.ID
	}

	del := tx.Where("layby_id = ?", layby.ID)
	if len(currentIDs) > 0 {
		del = del.Where("id NOT IN ?", currentIDs)
	}
	if err := del.Delete(&sales.LaybyItem{}).Error; err != nil {
		return err
	}

	for i := range layby.Items {
		layby.Items[i].LaybyID = layby.ID
		if err := tx.Save(&layby.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a layby by ID within a tenant
func (r *GormLaybyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*sales.Layby, error) {
	var layby sales.Layby
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&layby).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &layby, nil
}

// FindAll lists laybys for a tenant with filtering and pagination
func (r *GormLaybyRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[sales.Layby], error) {
	return paginate[sales.Layby](filter, func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&sales.Layby{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID)
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			query = query.Where("number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
		}
		return applyCommonFilters(query, filter)
	})
}

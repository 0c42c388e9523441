package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockItemRepository implements inventory.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)

// FindByBranchAndProduct loads the stock row for a branch-product pair. A
// missing row surfaces as NO_INVENTORY_RECORD, never as zero stock.
func (r *GormStockItemRepository) FindByBranchAndProduct(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND product_id = ?", tenantID, branchID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNoInventoryRecord,
				"No inventory record for product %s at branch %s", productID, branchID)
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForBranch lists stock rows for a branch
func (r *GormStockItemRepository) FindAllForBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&inventory.StockItem{}).
			Where("tenant_id = ? AND branch_id = ?", tenantID, branchID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []inventory.StockItem
	if err := applyOrderAndPage(base(), filter).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Save creates or updates a stock row
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveWithLock updates a stock row with an optimistic version check. The
// domain increments the version on every mutation, so the check runs
// against the pre-mutation value.
func (r *GormStockItemRepository) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	previousVersion := item.Version - 1
	item.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&inventory.StockItem{}).
		Where("id = ? AND version = ?", item.ID, previousVersion).
		Updates(map[string]interface{}{
			"quantity":   item.Quantity,
			"version":    item.Version,
			"updated_at": item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

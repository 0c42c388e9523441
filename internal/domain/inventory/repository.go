package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// StockItemRepository persists stock rows. Implementations must surface a
// missing (branch, product) row as a NO_INVENTORY_RECORD domain error so
// callers can distinguish it from zero stock.
type StockItemRepository interface {
	// FindByBranchAndProduct loads the stock row for a branch-product pair.
	FindByBranchAndProduct(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*StockItem, error)
	// FindAllForBranch lists stock rows for a branch.
	FindAllForBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]StockItem, int64, error)
	// Save creates or updates a stock row.
	Save(ctx context.Context, item *StockItem) error
	// SaveWithLock updates a stock row with an optimistic version check.
	SaveWithLock(ctx context.Context, item *StockItem) error
}

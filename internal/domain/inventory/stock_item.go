// Package inventory implements the per-branch, per-product stock ledger.
package inventory

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockItem is the aggregate root for inventory at one branch for one
// product. The composite identifier is (TenantID, BranchID, ProductID);
// a missing row is a NoInventoryRecord error, which is distinct from a
// row holding zero stock.
type StockItem struct {
	shared.TenantAggregateRoot
	BranchID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_items_branch_product,priority:2"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_items_branch_product,priority:3"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM.
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock row for a branch-product combination.
func NewStockItem(tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) (*StockItem, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Opening quantity cannot be negative")
	}

	return &StockItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		ProductID:           productID,
		Quantity:            quantity,
	}, nil
}

// CanFulfill reports whether the row holds at least the requested quantity.
func (s *StockItem) CanFulfill(qty decimal.Decimal) bool {
	return s.Quantity.GreaterThanOrEqual(qty)
}

// Deduct removes quantity from the row. Used by sale confirmation and by
// approved write-offs. Fails with InsufficientStock when the row holds
// less than requested; the quantity is left untouched on failure.
func (s *StockItem) Deduct(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Deduct quantity must be positive")
	}
	if s.Quantity.LessThan(qty) {
		return shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient stock: requested %s, available %s", qty, s.Quantity)
	}

	s.Quantity = s.Quantity.Sub(qty)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Reserve removes quantity for a layby activation. The stock movement is
// identical to Deduct; the reservation flag lives on the layby line so the
// cancellation path knows whether to return stock.
func (s *StockItem) Reserve(qty decimal.Decimal) error {
	return s.Deduct(qty)
}

// Return adds quantity back to the row, used when a layby with reserved
// lines is cancelled.
func (s *StockItem) Return(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Return quantity must be positive")
	}

	s.Quantity = s.Quantity.Add(qty)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Adjust sets the row to the counted quantity, recording the reason. Used
// by approved stock counts and loss write-offs.
func (s *StockItem) Adjust(actualQty decimal.Decimal, reason string) error {
	if actualQty.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Actual quantity cannot be negative")
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeValidation, "Adjustment reason is required")
	}

	s.Quantity = actualQty
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Package inventory wires the stock-ledger workflows: opening stock,
// approved adjustments and branch stock queries.
package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/catalog"
	domain "github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateStockInput opens a stock row for a branch-product pair.
type CreateStockInput struct {
	BranchID  uuid.UUID       `json:"branch_id" binding:"required"`
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// AdjustStockInput sets a stock row to the counted quantity.
type AdjustStockInput struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Reason         string          `json:"reason" binding:"required"`
}

// StockService orchestrates the stock ledger outside the selling flows.
type StockService struct {
	scope  scope.TransactionScope
	ref    catalog.ReferenceReader
	logger *zap.Logger
}

// NewStockService creates a StockService.
func NewStockService(txScope scope.TransactionScope, ref catalog.ReferenceReader, logger *zap.Logger) *StockService {
	return &StockService{scope: txScope, ref: ref, logger: logger}
}

// Create opens a stock row. A branch-product pair has at most one row;
// creating a second fails.
func (s *StockService) Create(ctx context.Context, tenantID uuid.UUID, in CreateStockInput) (*domain.StockItem, error) {
	branch, err := s.ref.GetBranch(ctx, tenantID, in.BranchID)
	if err != nil {
		return nil, err
	}
	if !branch.Active {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Branch %s is inactive", branch.Name)
	}
	if _, err := s.ref.GetProduct(ctx, tenantID, in.ProductID); err != nil {
		return nil, err
	}

	var item *domain.StockItem
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		if _, err := repos.Stock().FindByBranchAndProduct(ctx, tenantID, in.BranchID, in.ProductID); err == nil {
			return shared.NewDomainErrorf(shared.CodeAlreadyExists,
				"Stock row already exists for product %s at branch %s", in.ProductID, in.BranchID)
		} else if !shared.HasCode(err, shared.CodeNoInventoryRecord) {
			return err
		}

		item, err = domain.NewStockItem(tenantID, in.BranchID, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		return repos.Stock().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock row created",
		zap.String("branch_id", in.BranchID.String()),
		zap.String("product_id", in.ProductID.String()),
		zap.String("quantity", in.Quantity.String()))
	return item, nil
}

// Get loads the stock row for a branch-product pair.
func (s *StockService) Get(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*domain.StockItem, error) {
	var item *domain.StockItem
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		item, err = repos.Stock().FindByBranchAndProduct(ctx, tenantID, branchID, productID)
		return err
	})
	return item, err
}

// ListForBranch pages through a branch's stock rows.
func (s *StockService) ListForBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]domain.StockItem, int64, error) {
	var (
		items []domain.StockItem
		total int64
	)
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		items, total, err = repos.Stock().FindAllForBranch(ctx, tenantID, branchID, filter)
		return err
	})
	return items, total, err
}

// Adjust sets a stock row to the counted quantity, recording the reason.
func (s *StockService) Adjust(ctx context.Context, tenantID, branchID, productID uuid.UUID, in AdjustStockInput) (*domain.StockItem, error) {
	var item *domain.StockItem
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		item, err = repos.Stock().FindByBranchAndProduct(ctx, tenantID, branchID, productID)
		if err != nil {
			return err
		}
		if err := item.Adjust(in.ActualQuantity, in.Reason); err != nil {
			return err
		}
		return repos.Stock().SaveWithLock(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("branch_id", branchID.String()),
		zap.String("product_id", productID.String()),
		zap.String("actual_quantity", in.ActualQuantity.String()),
		zap.String("reason", in.Reason))
	return item, nil
}

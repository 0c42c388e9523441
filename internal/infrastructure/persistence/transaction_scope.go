package persistence

import (
	"context"

	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/payment"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/till"
	"gorm.io/gorm"
)

// GormTransactionScope implements scope.TransactionScope using GORM
// transactions. Every repository handed to fn is bound to the same
// transaction, so a failing workflow rolls back as one unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

var _ scope.TransactionScope = (*GormTransactionScope)(nil)

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos scope.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormRepositories{tx: tx})
	})
}

// gormRepositories provides access to all repositories within a transaction.
type gormRepositories struct {
	tx *gorm.DB
}

var _ scope.Repositories = (*gormRepositories)(nil)

func (r *gormRepositories) Sales() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormRepositories) Quotations() sales.QuotationRepository {
	return NewGormQuotationRepository(r.tx)
}

func (r *gormRepositories) Laybys() sales.LaybyRepository {
	return NewGormLaybyRepository(r.tx)
}

func (r *gormRepositories) Stock() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormRepositories) Payments() payment.Repository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) Shifts() till.ShiftRepository {
	return NewGormShiftRepository(r.tx)
}

func (r *gormRepositories) CashMovements() till.CashMovementRepository {
	return NewGormCashMovementRepository(r.tx)
}

func (r *gormRepositories) DayEnds() dayend.Repository {
	return NewGormDayEndRepository(r.tx)
}

func (r *gormRepositories) Sequences() shared.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

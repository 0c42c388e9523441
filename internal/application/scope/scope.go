// Package scope defines the unit-of-work boundary the application services
// run inside. Every multi-aggregate workflow (confirm sale, close shift,
// cancel layby) executes against one Repositories set bound to one
// database transaction, so partial writes never become visible.
package scope

import (
	"context"

	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/payment"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/till"
)

// Repositories bundles every write-side repository, all bound to the same
// transaction when obtained through TransactionScope.
type Repositories interface {
	Sales() sales.SaleRepository
	Quotations() sales.QuotationRepository
	Laybys() sales.LaybyRepository
	Stock() inventory.StockItemRepository
	Payments() payment.Repository
	Shifts() till.ShiftRepository
	CashMovements() till.CashMovementRepository
	DayEnds() dayend.Repository
	Sequences() shared.SequenceRepository
}

// TransactionScope runs fn inside a single transaction. fn returning an
// error rolls everything back; otherwise the transaction commits.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

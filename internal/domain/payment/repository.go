package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository persists payment records. Payments are append-only.
type Repository interface {
	// Save persists a new payment.
	Save(ctx context.Context, p *Payment) error
	// FindByID loads a payment within a tenant.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	// FindByTarget lists all payments recorded against a sale or layby.
	FindByTarget(ctx context.Context, tenantID uuid.UUID, target Target) ([]Payment, error)
	// FindByShift lists payments taken during a shift.
	FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]Payment, error)
	// SumBaseAmountByShiftAndMethod sums base-currency amounts for one
	// payment method within a shift. Shift close uses it with the tenant's
	// cash method to compute cash sales.
	SumBaseAmountByShiftAndMethod(ctx context.Context, tenantID, shiftID, methodID uuid.UUID) (decimal.Decimal, error)
	// SumBaseAmountByShift sums base-currency amounts across all methods
	// within a shift. The day-end shift rollup uses it as the shift's
	// sales figure.
	SumBaseAmountByShift(ctx context.Context, tenantID, shiftID uuid.UUID) (decimal.Decimal, error)
	// TotalsByMethodAndCurrency aggregates payments for a branch between
	// two instants, grouped by (payment method, currency). Day-end
	// reconciliation recomputes expected amounts from this.
	TotalsByMethodAndCurrency(ctx context.Context, tenantID, branchID uuid.UUID, from, to time.Time) ([]MethodCurrencyTotal, error)
}

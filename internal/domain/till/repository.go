package till

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// ShiftRepository persists shifts.
type ShiftRepository interface {
	Save(ctx context.Context, shift *Shift) error
	// SaveWithLock persists with an optimistic version check and returns
	// shared.ErrConcurrencyConflict on a stale version.
	SaveWithLock(ctx context.Context, shift *Shift) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Shift, error)
	// FindByIDs loads the given shifts within a tenant. Missing ids are
	// silently skipped.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Shift, error)
	// FindOpenByCashier returns the cashier's open shift, or
	// shared.ErrNotFound when there is none.
	FindOpenByCashier(ctx context.Context, tenantID, cashierID uuid.UUID) (*Shift, error)
	// FindClosedBetween lists shifts for a branch closed within [from, to).
	FindClosedBetween(ctx context.Context, tenantID, branchID uuid.UUID, from, to time.Time) ([]Shift, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Shift], error)
}

// CashMovementRepository persists cash movements.
type CashMovementRepository interface {
	Save(ctx context.Context, movement *CashMovement) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CashMovement, error)
	FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]CashMovement, error)
	// CountUnapproved returns how many movements on the shift still lack
	// approval. A non-zero count blocks shift close.
	CountUnapproved(ctx context.Context, tenantID, shiftID uuid.UUID) (int64, error)
}

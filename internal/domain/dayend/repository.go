package dayend

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Repository persists day-end summaries with their payment lines and
// shift links.
type Repository interface {
	Save(ctx context.Context, dayEnd *DayEnd) error
	// SaveWithLock persists with an optimistic version check and returns
	// shared.ErrConcurrencyConflict on a stale version.
	SaveWithLock(ctx context.Context, dayEnd *DayEnd) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*DayEnd, error)
	// FindByBranchAndDate returns the single summary for a branch and
	// business date, or shared.ErrNotFound.
	FindByBranchAndDate(ctx context.Context, tenantID, branchID uuid.UUID, businessDate time.Time) (*DayEnd, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[DayEnd], error)
}

package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// SaleRepository persists sale aggregates with their items.
type SaleRepository interface {
	Save(ctx context.Context, sale *Sale) error
	// SaveWithLock persists with an optimistic version check and returns
	// shared.ErrConcurrencyConflict on a stale version.
	SaveWithLock(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Sale, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Sale], error)
}

// QuotationRepository persists quotation aggregates with their items.
type QuotationRepository interface {
	Save(ctx context.Context, quotation *Quotation) error
	SaveWithLock(ctx context.Context, quotation *Quotation) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Quotation, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Quotation], error)
}

// LaybyRepository persists layby aggregates with their items.
type LaybyRepository interface {
	Save(ctx context.Context, layby *Layby) error
	SaveWithLock(ctx context.Context, layby *Layby) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Layby, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Layby], error)
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/till"
	"gorm.io/gorm"
)

// GormShiftRepository implements till.ShiftRepository using GORM
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

var _ till.ShiftRepository = (*GormShiftRepository)(nil)

// Save creates or updates a shift
func (r *GormShiftRepository) Save(ctx context.Context, shift *till.Shift) error {
	return r.db.WithContext(ctx).Save(shift).Error
}

// SaveWithLock saves with an optimistic version check.
func (r *GormShiftRepository) SaveWithLock(ctx context.Context, shift *till.Shift) error {
	currentVersion := shift.Version
	shift.Version++
	shift.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&till.Shift{}).
		Where("id = ? AND version = ?", shift.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":        shift.Status,
			"cash_sales":    shift.CashSales,
			"movements_net": shift.MovementsNet,
			"expected_cash": shift.ExpectedCash,
			"counted_cash":  shift.CountedCash,
			"variance":      shift.Variance,
			"closed_at":     shift.ClosedAt,
			"notes":         shift.Notes,
			"version":       shift.Version,
			"updated_at":    shift.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a shift by ID within a tenant
func (r *GormShiftRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*till.Shift, error) {
	var shift till.Shift
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

// FindByIDs loads the given shifts within a tenant
func (r *GormShiftRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]till.Shift, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shifts []till.Shift
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

// FindOpenByCashier returns the cashier's open shift, if any
func (r *GormShiftRepository) FindOpenByCashier(ctx context.Context, tenantID, cashierID uuid.UUID) (*till.Shift, error) {
	var shift till.Shift
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND cashier_id = ? AND status = ?", tenantID, cashierID, till.ShiftStatusOpen).
		First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

// FindClosedBetween lists shifts for a branch closed within [from, to)
func (r *GormShiftRepository) FindClosedBetween(ctx context.Context, tenantID, branchID uuid.UUID, from, to time.Time) ([]till.Shift, error) {
	var shifts []till.Shift
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND status = ? AND closed_at >= ? AND closed_at < ?",
			tenantID, branchID, till.ShiftStatusClosed, from, to).
		Order("closed_at ASC").
		Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

// FindAll lists shifts for a tenant with filtering and pagination
func (r *GormShiftRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[till.Shift], error) {
	return paginate[till.Shift](filter, func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&till.Shift{}).
			Where("tenant_id = ?", tenantID)
		for key, value := range filter.Filters {
			switch key {
			case "status":
				query = query.Where("status = ?", value)
			case "branch_id":
				query = query.Where("branch_id = ?", value)
			case "cashier_id":
				query = query.Where("cashier_id = ?", value)
			case "till_id":
				query = query.Where("till_id = ?", value)
			}
		}
		return query
	})
}

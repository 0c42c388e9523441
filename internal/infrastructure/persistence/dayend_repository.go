package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormDayEndRepository implements dayend.Repository using GORM
type GormDayEndRepository struct {
	db *gorm.DB
}

// NewGormDayEndRepository creates a new GormDayEndRepository
func NewGormDayEndRepository(db *gorm.DB) *GormDayEndRepository {
	return &GormDayEndRepository{db: db}
}

var _ dayend.Repository = (*GormDayEndRepository)(nil)

// Save creates or updates a day-end with its payment lines and shift links.
func (r *GormDayEndRepository) Save(ctx context.Context, summary *dayend.DayEnd) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Payments", "Shifts").Save(summary).Error; err != nil {
			return err
		}
		return saveDayEndChildren(tx, summary)
	})
}

// SaveWithLock saves with an optimistic version check.
func (r *GormDayEndRepository) SaveWithLock(ctx context.Context, summary *dayend.DayEnd) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := summary.Version
		summary.Version++
		summary.UpdatedAt = time.Now()

		result := tx.Model(&dayend.DayEnd{}).
			Where("id = ? AND version = ?", summary.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":               summary.Status,
				"total_expected":       summary.TotalExpected,
				"total_counted":        summary.TotalCounted,
				"total_variance":       summary.TotalVariance,
				"total_sales":          summary.TotalSales,
				"total_shift_variance": summary.TotalShiftVariance,
				"notes":                summary.Notes,
				"reviewed_by":          summary.ReviewedBy,
				"reviewed_at":          summary.ReviewedAt,
				"approved_by":          summary.ApprovedBy,
				"approved_at":          summary.ApprovedAt,
				"reopened_by":          summary.ReopenedBy,
				"reopened_at":          summary.ReopenedAt,
				"version":              summary.Version,
				"updated_at":           summary.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return saveDayEndChildren(tx, summary)
	})
}

// saveDayEndChildren replaces the payment lines and upserts shift links.
// Shift links are append-only; lines are regenerated on every roll-up.
func saveDayEndChildren(tx *gorm.DB, summary *dayend.DayEnd) error {
	lineIDs := make([]uuid.UUID, len(summary.Payments))
	for i, line := range summary.Payments {
		lineIDs[i] = line.ID
	}

	del := tx.Where("day_end_id = ?", summary.ID)
	if len(lineIDs) > 0 {
		del = del.Where("id NOT IN ?", lineIDs)
	}
	if err := del.Delete(&dayend.PaymentLine{}).Error; err != nil {
		return err
	}

	for i := range summary.Payments {
		summary.Payments[i].DayEndID = summary.ID
		if err := tx.Save(&summary.Payments[i]).Error; err != nil {
			return err
		}
	}

	for i := range summary.Shifts {
		summary.Shifts[i].DayEndID = summary.ID
		if err := tx.Save(&summary.Shifts[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a day-end by ID within a tenant
func (r *GormDayEndRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*dayend.DayEnd, error) {
	var summary dayend.DayEnd
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		Preload("Shifts").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// FindByBranchAndDate returns the single summary for a branch and business date
func (r *GormDayEndRepository) FindByBranchAndDate(ctx context.Context, tenantID, branchID uuid.UUID, businessDate time.Time) (*dayend.DayEnd, error) {
	var summary dayend.DayEnd
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		Preload("Shifts").
		Where("tenant_id = ? AND branch_id = ? AND business_date = ?",
			tenantID, branchID, dayend.TruncateToDate(businessDate)).
		First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// FindAll lists day-ends for a tenant with filtering and pagination
func (r *GormDayEndRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[dayend.DayEnd], error) {
	return paginate[dayend.DayEnd](filter, func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&dayend.DayEnd{}).
			Preload("Payments").
			Preload("Shifts").
			Where("tenant_id = ?", tenantID)
		for key, value := range filter.Filters {
			switch key {
			case "status":
				query = query.Where("status = ?", value)
			case "branch_id":
				query = query.Where("branch_id = ?", value)
			case "start_date":
				if t, ok := value.(time.Time); ok {
					query = query.Where("business_date >= ?", dayend.TruncateToDate(t))
				}
			case "end_date":
				if t, ok := value.(time.Time); ok {
					query = query.Where("business_date <= ?", dayend.TruncateToDate(t))
				}
			}
		}
		return query
	})
}

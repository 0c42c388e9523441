package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/till"
	"gorm.io/gorm"
)

// GormCashMovementRepository implements till.CashMovementRepository using GORM
type GormCashMovementRepository struct {
	db *gorm.DB
}

// NewGormCashMovementRepository creates a new GormCashMovementRepository
func NewGormCashMovementRepository(db *gorm.DB) *GormCashMovementRepository {
	return &GormCashMovementRepository{db: db}
}

var _ till.CashMovementRepository = (*GormCashMovementRepository)(nil)

// Save creates or updates a cash movement
func (r *GormCashMovementRepository) Save(ctx context.Context, movement *till.CashMovement) error {
	return r.db.WithContext(ctx).Save(movement).Error
}

// FindByID finds a cash movement by ID within a tenant
func (r *GormCashMovementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*till.CashMovement, error) {
	var movement till.CashMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByShift lists movements booked against a shift
func (r *GormCashMovementRepository) FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]till.CashMovement, error) {
	var movements []till.CashMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND shift_id = ?", tenantID, shiftID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountUnapproved returns how many movements on the shift still lack approval
func (r *GormCashMovementRepository) CountUnapproved(ctx context.Context, tenantID, shiftID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&till.CashMovement{}).
		Where("tenant_id = ? AND shift_id = ? AND approved = false", tenantID, shiftID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

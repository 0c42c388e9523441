package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/payment"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

var _ payment.Repository = (*GormPaymentRepository)(nil)

// Save persists a new payment. Payments are append-only.
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByID loads a payment within a tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByTarget lists all payments recorded against a sale or layby
func (r *GormPaymentRepository) FindByTarget(ctx context.Context, tenantID uuid.UUID, target payment.Target) ([]payment.Payment, error) {
	var payments []payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND target_type = ? AND target_id = ?", tenantID, target.Type, target.ID).
		Order("received_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByShift lists payments taken during a shift
func (r *GormPaymentRepository) FindByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]payment.Payment, error) {
	var payments []payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND shift_id = ?", tenantID, shiftID).
		Order("received_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumBaseAmountByShiftAndMethod sums base-currency amounts for one payment
// method within a shift.
func (r *GormPaymentRepository) SumBaseAmountByShiftAndMethod(ctx context.Context, tenantID, shiftID, methodID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Select("COALESCE(SUM(base_amount), 0)").
		Where("tenant_id = ? AND shift_id = ? AND payment_method_id = ?", tenantID, shiftID, methodID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// SumBaseAmountByShift sums base-currency amounts across all methods
// within a shift.
func (r *GormPaymentRepository) SumBaseAmountByShift(ctx context.Context, tenantID, shiftID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Select("COALESCE(SUM(base_amount), 0)").
		Where("tenant_id = ? AND shift_id = ?", tenantID, shiftID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// TotalsByMethodAndCurrency aggregates payments for a branch in [from, to),
// grouped by (payment method, currency).
func (r *GormPaymentRepository) TotalsByMethodAndCurrency(ctx context.Context, tenantID, branchID uuid.UUID, from, to time.Time) ([]payment.MethodCurrencyTotal, error) {
	var totals []payment.MethodCurrencyTotal
	err := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Select("payment_method_id, currency_code, COALESCE(SUM(base_amount), 0) AS base_amount").
		Where("tenant_id = ? AND branch_id = ? AND received_at >= ? AND received_at < ?",
			tenantID, branchID, from, to).
		Group("payment_method_id, currency_code").
		Order("payment_method_id, currency_code").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

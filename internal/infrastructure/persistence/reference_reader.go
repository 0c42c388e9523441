package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Row models for the reference tables. The engine only reads these (plus
// the single last-purchase stamp), so they are kept as thin persistence
// structs instead of domain aggregates.

type productRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string
	Code     string
	Price    decimal.Decimal `gorm:"type:decimal(18,2)"`
	Cost     decimal.Decimal `gorm:"type:decimal(18,2)"`
	Active   bool
}

func (productRow) TableName() string { return "products" }

type currencyRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Code         string    `gorm:"type:varchar(3);not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,6)"`
	IsDefault    bool
	Active       bool
}

func (currencyRow) TableName() string { return "currencies" }

type paymentMethodRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string
	IsCash   bool
	Active   bool
}

func (paymentMethodRow) TableName() string { return "payment_methods" }

type branchRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string
	Active   bool
}

func (branchRow) TableName() string { return "branches" }

type tillRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string
	Active   bool
}

func (tillRow) TableName() string { return "tills" }

type customerRow struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string
	Active         bool
	LastPurchaseAt *time.Time
}

func (customerRow) TableName() string { return "customers" }

// branchSettingsRow holds one settings set. BranchID nil marks the tenant
// default row; a branch-specific row overrides it wholesale.
type branchSettingsRow struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID              uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchID              *uuid.UUID `gorm:"type:uuid"`
	TaxMode               string     `gorm:"type:varchar(10)"`
	TaxRate               decimal.Decimal `gorm:"type:decimal(5,2)"`
	QuotationValidityDays int
	LaybyDepositPct       decimal.Decimal `gorm:"type:decimal(5,2)"`
	LaybyCancellationFee  decimal.Decimal `gorm:"type:decimal(18,2)"`
}

func (branchSettingsRow) TableName() string { return "branch_settings" }

// GormReferenceReader implements catalog.ReferenceReader and
// catalog.CustomerPurchaseRecorder on the reference tables.
type GormReferenceReader struct {
	db *gorm.DB
}

// NewGormReferenceReader creates a new GormReferenceReader
func NewGormReferenceReader(db *gorm.DB) *GormReferenceReader {
	return &GormReferenceReader{db: db}
}

var (
	_ catalog.ReferenceReader          = (*GormReferenceReader)(nil)
	_ catalog.CustomerPurchaseRecorder = (*GormReferenceReader)(nil)
)

// GetProduct resolves a product snapshot.
func (r *GormReferenceReader) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	var row productRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Product %s not found", productID)
		}
		return nil, err
	}
	return &catalog.Product{
		ID:     row.ID,
		Name:   row.Name,
		Code:   row.Code,
		Price:  row.Price,
		Cost:   row.Cost,
		Active: row.Active,
	}, nil
}

// GetCurrency resolves a currency with its exchange-rate snapshot.
func (r *GormReferenceReader) GetCurrency(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Currency, error) {
	var row currencyRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Currency %s not found", code)
		}
		return nil, err
	}
	return &catalog.Currency{
		Code:         row.Code,
		ExchangeRate: row.ExchangeRate,
		IsDefault:    row.IsDefault,
		Active:       row.Active,
	}, nil
}

// GetPaymentMethod resolves a payment method.
func (r *GormReferenceReader) GetPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*catalog.PaymentMethod, error) {
	var row paymentMethodRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, methodID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Payment method %s not found", methodID)
		}
		return nil, err
	}
	return &catalog.PaymentMethod{ID: row.ID, Name: row.Name, Active: row.Active}, nil
}

// GetBranch resolves a branch.
func (r *GormReferenceReader) GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*catalog.Branch, error) {
	var row branchRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, branchID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Branch %s not found", branchID)
		}
		return nil, err
	}
	return &catalog.Branch{ID: row.ID, Name: row.Name, Active: row.Active}, nil
}

// GetTill resolves a till.
func (r *GormReferenceReader) GetTill(ctx context.Context, tenantID, tillID uuid.UUID) (*catalog.Till, error) {
	var row tillRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, tillID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Till %s not found", tillID)
		}
		return nil, err
	}
	return &catalog.Till{ID: row.ID, BranchID: row.BranchID, Name: row.Name, Active: row.Active}, nil
}

// GetBranchSettings resolves the effective settings for a branch: the
// branch-specific row when present, otherwise the tenant default row.
func (r *GormReferenceReader) GetBranchSettings(ctx context.Context, tenantID, branchID uuid.UUID) (*catalog.BranchSettings, error) {
	var row branchSettingsRow
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.db.WithContext(ctx).
			Where("tenant_id = ? AND branch_id IS NULL", tenantID).
			First(&row).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "No settings configured for branch %s", branchID)
		}
		return nil, err
	}

	return &catalog.BranchSettings{
		BranchID:              branchID,
		TaxMode:               catalog.TaxMode(row.TaxMode),
		TaxRate:               row.TaxRate,
		QuotationValidityDays: row.QuotationValidityDays,
		LaybyDepositPct:       row.LaybyDepositPct,
		LaybyCancellationFee:  row.LaybyCancellationFee,
	}, nil
}

// GetCustomer resolves a customer.
func (r *GormReferenceReader) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*catalog.Customer, error) {
	var row customerRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Customer %s not found", customerID)
		}
		return nil, err
	}
	return &catalog.Customer{
		ID:             row.ID,
		Name:           row.Name,
		Active:         row.Active,
		LastPurchaseAt: row.LastPurchaseAt,
	}, nil
}

// GetTenantDefaults resolves the tenant's base currency and cash method.
func (r *GormReferenceReader) GetTenantDefaults(ctx context.Context, tenantID uuid.UUID) (*catalog.TenantDefaults, error) {
	var currency currencyRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = true", tenantID).
		First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Tenant has no default currency")
		}
		return nil, err
	}

	var method paymentMethodRow
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_cash = true AND active = true", tenantID).
		First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Tenant has no cash payment method")
		}
		return nil, err
	}

	return &catalog.TenantDefaults{
		BaseCurrency: currency.Code,
		CashMethodID: method.ID,
	}, nil
}

// RecordPurchase stamps the customer's last purchase timestamp.
func (r *GormReferenceReader) RecordPurchase(ctx context.Context, tenantID, customerID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&customerRow{}).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Update("last_purchase_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainErrorf(shared.CodeNotFound, "Customer %s not found", customerID)
	}
	return nil
}

// Package catalog defines the read-only reference-data boundary the
// transaction engine depends on: products, currencies, payment methods,
// branches and their settings. The engine never mutates reference data,
// with the single exception of stamping a customer's last purchase.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxMode determines how the tax rate is applied to a discounted subtotal.
type TaxMode string

const (
	TaxModeInclusive TaxMode = "inclusive"
	TaxModeExclusive TaxMode = "exclusive"
)

// IsValid checks whether the tax mode is known.
func (m TaxMode) IsValid() bool {
	return m == TaxModeInclusive || m == TaxModeExclusive
}

// Product is a catalog snapshot used when building document lines.
type Product struct {
	ID     uuid.UUID
	Name   string
	Code   string
	Price  decimal.Decimal
	Cost   decimal.Decimal
	Active bool
}

// Currency carries the exchange rate to the tenant's base currency.
// Rate semantics: 1 unit of this currency == ExchangeRate base units.
type Currency struct {
	Code         string
	ExchangeRate decimal.Decimal
	IsDefault    bool
	Active       bool
}

// PaymentMethod is a configured tender type (cash, card, transfer, ...).
type PaymentMethod struct {
	ID     uuid.UUID
	Name   string
	Active bool
}

// Branch is a selling location within a tenant's store.
type Branch struct {
	ID     uuid.UUID
	Name   string
	Active bool
}

// Till is a physical register within a branch.
type Till struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Name     string
	Active   bool
}

// Customer is the minimal view the engine needs.
type Customer struct {
	ID             uuid.UUID
	Name           string
	Active         bool
	LastPurchaseAt *time.Time
}

// BranchSettings are the effective per-branch configuration values the
// workflows consume. A branch override falls back to the tenant default at
// the reader implementation level, so callers always see resolved values.
type BranchSettings struct {
	BranchID              uuid.UUID
	TaxMode               TaxMode
	TaxRate               decimal.Decimal
	QuotationValidityDays int
	LaybyDepositPct       decimal.Decimal
	LaybyCancellationFee  decimal.Decimal
}

// TenantDefaults are resolved once per tenant instead of being re-queried
// by name. BaseCurrency is the code every payment is converted into;
// CashMethodID identifies the tender that counts toward drawer cash.
type TenantDefaults struct {
	BaseCurrency string
	CashMethodID uuid.UUID
}

// ProductReader resolves product snapshots.
type ProductReader interface {
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*Product, error)
}

// CurrencyReader resolves currencies and their exchange-rate snapshots.
type CurrencyReader interface {
	GetCurrency(ctx context.Context, tenantID uuid.UUID, code string) (*Currency, error)
}

// PaymentMethodReader resolves payment methods.
type PaymentMethodReader interface {
	GetPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*PaymentMethod, error)
}

// BranchReader resolves branches, tills and effective branch settings.
type BranchReader interface {
	GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*Branch, error)
	GetTill(ctx context.Context, tenantID, tillID uuid.UUID) (*Till, error)
	GetBranchSettings(ctx context.Context, tenantID, branchID uuid.UUID) (*BranchSettings, error)
}

// CustomerReader resolves customers.
type CustomerReader interface {
	GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*Customer, error)
}

// CustomerPurchaseRecorder stamps the customer's last purchase timestamp
// when a sale is confirmed. It is the only write the engine performs
// against reference data.
type CustomerPurchaseRecorder interface {
	RecordPurchase(ctx context.Context, tenantID, customerID uuid.UUID, at time.Time) error
}

// DefaultsResolver resolves per-tenant defaults.
type DefaultsResolver interface {
	GetTenantDefaults(ctx context.Context, tenantID uuid.UUID) (*TenantDefaults, error)
}

// ReferenceReader bundles every read-side dependency of the engine.
type ReferenceReader interface {
	ProductReader
	CurrencyReader
	PaymentMethodReader
	BranchReader
	CustomerReader
	DefaultsResolver
}

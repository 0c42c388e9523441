package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Reference is an in-memory catalog.ReferenceReader populated with one
// tenant's worth of reference data. NewReference seeds sensible defaults;
// tests override individual entries as needed.
type Reference struct {
	TenantID     uuid.UUID
	BranchID     uuid.UUID
	TillID       uuid.UUID
	CashMethodID uuid.UUID
	CardMethodID uuid.UUID
	CustomerID   uuid.UUID

	Products   map[uuid.UUID]catalog.Product
	Currencies map[string]catalog.Currency
	Methods    map[uuid.UUID]catalog.PaymentMethod
	Settings   catalog.BranchSettings
	Customers  map[uuid.UUID]catalog.Customer
	Defaults   catalog.TenantDefaults

	PurchasesRecorded []uuid.UUID
}

// NewReference builds a reference fixture: one branch with exclusive 15%
// tax, USD base currency, a cash and a card method, and one customer.
func NewReference() *Reference {
	tenantID := uuid.New()
	branchID := uuid.New()
	cashID := uuid.New()
	cardID := uuid.New()
	customerID := uuid.New()

	return &Reference{
		TenantID:     tenantID,
		BranchID:     branchID,
		TillID:       uuid.New(),
		CashMethodID: cashID,
		CardMethodID: cardID,
		CustomerID:   customerID,
		Products:     make(map[uuid.UUID]catalog.Product),
		Currencies: map[string]catalog.Currency{
			"USD": {Code: "USD", ExchangeRate: decimal.NewFromInt(1), IsDefault: true, Active: true},
			"EUR": {Code: "EUR", ExchangeRate: decimal.NewFromFloat(1.1), Active: true},
		},
		Methods: map[uuid.UUID]catalog.PaymentMethod{
			cashID: {ID: cashID, Name: "Cash", Active: true},
			cardID: {ID: cardID, Name: "Card", Active: true},
		},
		Settings: catalog.BranchSettings{
			BranchID:              branchID,
			TaxMode:               catalog.TaxModeExclusive,
			TaxRate:               decimal.NewFromInt(15),
			QuotationValidityDays: 14,
			LaybyDepositPct:       decimal.NewFromInt(20),
			LaybyCancellationFee:  decimal.NewFromInt(25),
		},
		Customers: map[uuid.UUID]catalog.Customer{
			customerID: {ID: customerID, Name: "Acme Ltd", Active: true},
		},
		Defaults: catalog.TenantDefaults{BaseCurrency: "USD", CashMethodID: cashID},
	}
}

// AddProduct registers a product and returns its ID.
func (r *Reference) AddProduct(name string, price decimal.Decimal) uuid.UUID {
	id := uuid.New()
	r.Products[id] = catalog.Product{ID: id, Name: name, Code: name, Price: price, Active: true}
	return id
}

// GetProduct implements catalog.ProductReader.
func (r *Reference) GetProduct(_ context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	p, ok := r.Products[productID]
	if !ok || tenantID != r.TenantID {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

// GetCurrency implements catalog.CurrencyReader.
func (r *Reference) GetCurrency(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Currency, error) {
	c, ok := r.Currencies[code]
	if !ok || tenantID != r.TenantID {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

// GetPaymentMethod implements catalog.PaymentMethodReader.
func (r *Reference) GetPaymentMethod(_ context.Context, tenantID, methodID uuid.UUID) (*catalog.PaymentMethod, error) {
	m, ok := r.Methods[methodID]
	if !ok || tenantID != r.TenantID {
		return nil, shared.ErrNotFound
	}
	return &m, nil
}

// GetBranch implements catalog.BranchReader.
func (r *Reference) GetBranch(_ context.Context, tenantID, branchID uuid.UUID) (*catalog.Branch, error) {
	if tenantID != r.TenantID || branchID != r.BranchID {
		return nil, shared.ErrNotFound
	}
	return &catalog.Branch{ID: branchID, Name: "Main", Active: true}, nil
}

// GetTill implements catalog.BranchReader.
func (r *Reference) GetTill(_ context.Context, tenantID, tillID uuid.UUID) (*catalog.Till, error) {
	if tenantID != r.TenantID || tillID != r.TillID {
		return nil, shared.ErrNotFound
	}
	return &catalog.Till{ID: tillID, BranchID: r.BranchID, Name: "Till 1", Active: true}, nil
}

// GetBranchSettings implements catalog.BranchReader.
func (r *Reference) GetBranchSettings(_ context.Context, tenantID, branchID uuid.UUID) (*catalog.BranchSettings, error) {
	if tenantID != r.TenantID || branchID != r.BranchID {
		return nil, shared.ErrNotFound
	}
	settings := r.Settings
	return &settings, nil
}

// GetCustomer implements catalog.CustomerReader.
func (r *Reference) GetCustomer(_ context.Context, tenantID, customerID uuid.UUID) (*catalog.Customer, error) {
	c, ok := r.Customers[customerID]
	if !ok || tenantID != r.TenantID {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

// GetTenantDefaults implements catalog.DefaultsResolver.
func (r *Reference) GetTenantDefaults(_ context.Context, tenantID uuid.UUID) (*catalog.TenantDefaults, error) {
	if tenantID != r.TenantID {
		return nil, shared.ErrNotFound
	}
	defaults := r.Defaults
	return &defaults, nil
}

// RecordPurchase implements catalog.CustomerPurchaseRecorder.
func (r *Reference) RecordPurchase(_ context.Context, tenantID, customerID uuid.UUID, at time.Time) error {
	if tenantID != r.TenantID {
		return shared.ErrNotFound
	}
	c, ok := r.Customers[customerID]
	if !ok {
		return shared.ErrNotFound
	}
	c.LastPurchaseAt = &at
	r.Customers[customerID] = c
	r.PurchasesRecorded = append(r.PurchasesRecorded, customerID)
	return nil
}

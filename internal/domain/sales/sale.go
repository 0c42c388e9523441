// Package sales implements the three selling workflows of the engine:
// sales (credit and till), quotations and laybys. Each is an aggregate
// root with its own state machine; all three snapshot catalog prices at
// creation so later price changes never alter an existing document.
package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/pricing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentTolerance absorbs cent-level rounding when comparing paid and due
// amounts across currency conversions.
var PaymentTolerance = decimal.NewFromFloat(0.01)

// SaleType distinguishes pay-later credit sales from immediate till sales.
type SaleType string

const (
	SaleTypeCredit SaleType = "credit"
	SaleTypeTill   SaleType = "till"
)

// IsValid checks whether the sale type is known.
func (t SaleType) IsValid() bool {
	return t == SaleTypeCredit || t == SaleTypeTill
}

// SaleStatus represents the status of a sale.
type SaleStatus string

const (
	SaleStatusDraft         SaleStatus = "draft"
	SaleStatusConfirmed     SaleStatus = "confirmed"
	SaleStatusPartiallyPaid SaleStatus = "partially_paid"
	SaleStatusFullyPaid     SaleStatus = "fully_paid"
	SaleStatusCompleted     SaleStatus = "completed"
	SaleStatusCancelled     SaleStatus = "cancelled"
)

// IsValid checks whether the status is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusConfirmed, SaleStatusPartiallyPaid,
		SaleStatusFullyPaid, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation.
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the status can move to the target status.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusDraft:
		return target == SaleStatusConfirmed || target == SaleStatusCancelled
	case SaleStatusConfirmed:
		return target == SaleStatusPartiallyPaid || target == SaleStatusFullyPaid
	case SaleStatusPartiallyPaid:
		return target == SaleStatusFullyPaid
	case SaleStatusFullyPaid:
		return target == SaleStatusCompleted
	case SaleStatusCompleted, SaleStatusCancelled:
		return false
	}
	return false
}

// CanAcceptPayment reports whether payments may be recorded in this status.
func (s SaleStatus) CanAcceptPayment() bool {
	return s == SaleStatusConfirmed || s == SaleStatusPartiallyPaid || s == SaleStatusFullyPaid
}

// SaleItem is a line item in a sale. The unit price is a snapshot taken at
// creation time and is immutable afterwards.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (SaleItem) TableName() string {
	return "sale_items"
}

func (i SaleItem) toLineInput() pricing.LineInput {
	return pricing.LineInput{UnitPrice: i.UnitPrice, Quantity: i.Quantity, DiscountPct: i.DiscountPct}
}

func newSaleItem(saleID uuid.UUID, snap ItemSnapshot) (*SaleItem, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   snap.ProductID,
		ProductName: snap.ProductName,
		ProductCode: snap.ProductCode,
		Quantity:    snap.Quantity,
		UnitPrice:   snap.UnitPrice,
		DiscountPct: snap.DiscountPct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ItemSnapshot carries the catalog snapshot for one document line at
// creation time. Shared by sales, quotations and laybys.
type ItemSnapshot struct {
	ProductID   uuid.UUID
	ProductName string
	ProductCode string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
}

func (s ItemSnapshot) validate() error {
	if s.ProductID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if s.ProductName == "" {
		return shared.NewDomainError(shared.CodeValidation, "Product name cannot be empty")
	}
	if s.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be positive")
	}
	if s.UnitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Unit price cannot be negative")
	}
	return nil
}

// Sale is the aggregate root for a recorded sale. The invariant
// AmountPaid + AmountDue == Total (within PaymentTolerance) holds after
// every mutation, and AmountDue never goes negative.
type Sale struct {
	shared.TenantAggregateRoot
	Number           string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_sales_tenant_number,priority:2"`
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName     string          `gorm:"type:varchar(200);not null"`
	Type             SaleType        `gorm:"type:varchar(10);not null"`
	Items            []SaleItem      `gorm:"foreignKey:SaleID;references:ID"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OrderDiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxMode          catalog.TaxMode `gorm:"type:varchar(10);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status           SaleStatus      `gorm:"type:varchar(20);not null;index"`
	QuotationID      *uuid.UUID      `gorm:"type:uuid"`
	ConfirmedAt      *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM.
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a draft sale with the given catalog snapshots. No stock
// is touched at creation.
func NewSale(
	tenantID uuid.UUID,
	number string,
	branchID, customerID uuid.UUID,
	customerName string,
	saleType SaleType,
	taxMode catalog.TaxMode,
	taxRate decimal.Decimal,
	items []ItemSnapshot,
	orderDiscountPct decimal.Decimal,
	createdBy uuid.UUID,
) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Sale number cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer ID cannot be empty")
	}
	if !saleType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown sale type %q", saleType)
	}
	if !taxMode.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown tax mode %q", taxMode)
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Sale requires at least one item")
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Number:              number,
		BranchID:            branchID,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Type:                saleType,
		TaxMode:             taxMode,
		TaxRate:             taxRate,
		OrderDiscountPct:    orderDiscountPct,
		AmountPaid:          decimal.Zero,
		Status:              SaleStatusDraft,
	}

	for _, snap := range items {
		item, err := newSaleItem(sale.ID, snap)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, *item)
	}

	if err := sale.reprice(); err != nil {
		return nil, err
	}
	return sale, nil
}

// ReplaceItems swaps the item set and recalculates totals. Only allowed in
// draft status, before any stock movement has happened.
func (s *Sale) ReplaceItems(items []ItemSnapshot, orderDiscountPct decimal.Decimal) error {
	if s.Status != SaleStatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot update a sale in %s status", s.Status)
	}
	if len(items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Sale requires at least one item")
	}

	newItems := make([]SaleItem, 0, len(items))
	for _, snap := range items {
		item, err := newSaleItem(s.ID, snap)
		if err != nil {
			return err
		}
		newItems = append(newItems, *item)
	}

	s.Items = newItems
	s.OrderDiscountPct = orderDiscountPct
	if err := s.reprice(); err != nil {
		return err
	}
	s.Touch()
	return nil
}

// Confirm moves the sale from draft to confirmed. Stock deduction for
// every line happens in the same transaction at the application layer.
func (s *Sale) Confirm() error {
	if !s.Status.CanTransitionTo(SaleStatusConfirmed) {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot confirm a sale in %s status", s.Status)
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Cannot confirm a sale without items")
	}

	now := time.Now()
	s.Status = SaleStatusConfirmed
	s.ConfirmedAt = &now
	s.UpdatedAt = now
	return nil
}

// RecordPayment applies a payment's base-currency amount to the sale and
// recomputes the paid/due split. A payment exceeding the amount due
// (beyond PaymentTolerance) is rejected.
func (s *Sale) RecordPayment(baseAmount decimal.Decimal) error {
	if !s.Status.CanAcceptPayment() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot record a payment on a sale in %s status", s.Status)
	}
	if baseAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Payment amount must be positive")
	}
	if baseAmount.GreaterThan(s.AmountDue.Add(PaymentTolerance)) {
		return shared.NewDomainErrorf(shared.CodePaymentExceedsDue,
			"Payment of %s exceeds amount due %s", baseAmount, s.AmountDue)
	}

	s.AmountPaid = s.AmountPaid.Add(baseAmount)
	s.AmountDue = s.Total.Sub(s.AmountPaid)
	if s.AmountDue.IsNegative() {
		// Overshoot is bounded by PaymentTolerance; clamp so AmountDue
		// never goes negative.
		s.AmountDue = decimal.Zero
	}

	if s.AmountDue.LessThanOrEqual(PaymentTolerance) {
		s.Status = SaleStatusFullyPaid
	} else {
		s.Status = SaleStatusPartiallyPaid
	}
	s.Touch()
	return nil
}

// Complete marks a fully paid till sale as completed.
func (s *Sale) Complete() error {
	if !s.Status.CanTransitionTo(SaleStatusCompleted) {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot complete a sale in %s status", s.Status)
	}

	now := time.Now()
	s.Status = SaleStatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// Cancel cancels a draft sale. Items are cascade-deleted with the sale and
// no stock movement ever occurred, so nothing needs compensation.
func (s *Sale) Cancel() error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot cancel a sale in %s status", s.Status)
	}

	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	return nil
}

// SetQuotation records the quotation this sale was converted from.
func (s *Sale) SetQuotation(quotationID uuid.UUID) {
	if quotationID == uuid.Nil {
		return
	}
	s.QuotationID = &quotationID
}

// IsDraft returns true while the sale is editable.
func (s *Sale) IsDraft() bool {
	return s.Status == SaleStatusDraft
}

// IsSettled returns true once nothing more is owed.
func (s *Sale) IsSettled() bool {
	return s.Status == SaleStatusFullyPaid || s.Status == SaleStatusCompleted
}

// reprice runs the pricing calculator over the current items and stores
// both per-line and document totals.
func (s *Sale) reprice() error {
	lines := make([]pricing.LineInput, len(s.Items))
	for i, item := range s.Items {
		lines[i] = item.toLineInput()
	}

	result, err := pricing.Calculate(lines, s.OrderDiscountPct, pricing.TaxSettings{Mode: s.TaxMode, Rate: s.TaxRate})
	if err != nil {
		return err
	}

	for i := range s.Items {
		s.Items[i].LineTotal = result.Lines[i].Total.Round(2)
	}
	s.Subtotal = result.Subtotal.Round(2)
	s.DiscountAmount = result.OrderDiscountAmount.Round(2)
	s.TaxAmount = result.TaxAmount
	s.Total = result.Total
	s.AmountDue = s.Total.Sub(s.AmountPaid)
	return nil
}

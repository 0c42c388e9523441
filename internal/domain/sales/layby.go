package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/pricing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LaybyStatus represents the status of a layby.
type LaybyStatus string

const (
	LaybyStatusDraft         LaybyStatus = "draft"
	LaybyStatusActive        LaybyStatus = "active"
	LaybyStatusPartiallyPaid LaybyStatus = "partially_paid"
	LaybyStatusFullyPaid     LaybyStatus = "fully_paid"
	LaybyStatusCollected     LaybyStatus = "collected"
	LaybyStatusCancelled     LaybyStatus = "cancelled"
)

// IsValid checks whether the status is a known LaybyStatus.
func (s LaybyStatus) IsValid() bool {
	switch s {
	case LaybyStatusDraft, LaybyStatusActive, LaybyStatusPartiallyPaid,
		LaybyStatusFullyPaid, LaybyStatusCollected, LaybyStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation.
func (s LaybyStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s LaybyStatus) IsTerminal() bool {
	return s == LaybyStatusCollected || s == LaybyStatusCancelled
}

// CanAcceptPayment reports whether instalments may be recorded.
func (s LaybyStatus) CanAcceptPayment() bool {
	return s == LaybyStatusActive || s == LaybyStatusPartiallyPaid
}

// LaybyItem is a line item in a layby. StockReserved records whether the
// physical units were set aside when the layby was activated; the flag
// drives the stock return on cancellation.
type LaybyItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LaybyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName   string          `gorm:"type:varchar(200);not null"`
	ProductCode   string          `gorm:"type:varchar(50)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	StockReserved bool            `gorm:"not null;default:false"`
	ReservedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM.
func (LaybyItem) TableName() string {
	return "layby_items"
}

func (i LaybyItem) toLineInput() pricing.LineInput {
	return pricing.LineInput{UnitPrice: i.UnitPrice, Quantity: i.Quantity, DiscountPct: i.DiscountPct}
}

func newLaybyItem(laybyID uuid.UUID, snap ItemSnapshot) (*LaybyItem, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &LaybyItem{
		ID:          uuid.New(),
		LaybyID:     laybyID,
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

// Layby is a lay-away agreement: goods are reserved when the layby
// activates and handed over only once the total is paid off in
// instalments. DepositRequired and CancellationFee are snapshotted from
// branch settings at creation.
type Layby struct {
	shared.TenantAggregateRoot
	Number           string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_laybys_tenant_number,priority:2"`
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName     string          `gorm:"type:varchar(200);not null"`
	Items            []LaybyItem     `gorm:"foreignKey:LaybyID;references:ID"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OrderDiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxMode          catalog.TaxMode `gorm:"type:varchar(10);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DepositRequired  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CancellationFee  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status           LaybyStatus     `gorm:"type:varchar(20);not null;index"`
	ActivatedAt      *time.Time
	CollectedAt      *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM.
func (Layby) TableName() string {
	return "laybys"
}

// NewLayby creates a draft layby. depositPct is the branch's minimum
// deposit percentage of the total; cancellationFee is the flat fee
// withheld from refunds on cancellation.
func NewLayby(
	tenantID uuid.UUID,
	number string,
	branchID, customerID uuid.UUID,
	customerName string,
	taxMode catalog.TaxMode,
	taxRate decimal.Decimal,
	items []ItemSnapshot,
	orderDiscountPct decimal.Decimal,
	depositPct, cancellationFee decimal.Decimal,
	createdBy uuid.UUID,
) (*Layby, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Layby number cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer ID cannot be empty")
	}
	if !taxMode.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown tax mode %q", taxMode)
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Layby requires at least one item")
	}
	if depositPct.IsNegative() || depositPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Deposit percentage must be between 0 and 100")
	}
	if cancellationFee.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Cancellation fee cannot be negative")
	}

	l := &Layby{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Number:              number,
		BranchID:            branchID,
		CustomerID:          customerID,
		CustomerName:        customerName,
		TaxMode:             taxMode,
		TaxRate:             taxRate,
		OrderDiscountPct:    orderDiscountPct,
		CancellationFee:     cancellationFee,
		AmountPaid:          decimal.Zero,
		Status:              LaybyStatusDraft,
	}

	for _, snap := range items {
		item, err := newLaybyItem(l.ID, snap)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, *item)
	}

	if err := l.reprice(); err != nil {
		return nil, err
	}
	l.DepositRequired = l.Total.Mul(depositPct).Div(decimal.NewFromInt(100)).Round(2)
	return l, nil
}

// CanUpdate reports whether the item set may still change. Once money has
// been taken or stock reserved the lines are frozen.
func (l *Layby) CanUpdate() bool {
	return l.Status == LaybyStatusDraft && l.AmountPaid.IsZero()
}

// ReplaceItems swaps the item set, reprices and recomputes the required
// deposit from the given percentage.
func (l *Layby) ReplaceItems(items []ItemSnapshot, orderDiscountPct, depositPct decimal.Decimal) error {
	if !l.CanUpdate() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot update a layby in %s status", l.Status)
	}
	if len(items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Layby requires at least one item")
	}
	if depositPct.IsNegative() || depositPct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError(shared.CodeValidation, "Deposit percentage must be between 0 and 100")
	}

	newItems := make([]LaybyItem, 0, len(items))
	for _, snap := range items {
		item, err := newLaybyItem(l.ID, snap)
		if err != nil {
			return err
		}
		newItems = append(newItems, *item)
	}

	l.Items = newItems
	l.OrderDiscountPct = orderDiscountPct
	if err := l.reprice(); err != nil {
		return err
	}
	l.DepositRequired = l.Total.Mul(depositPct).Div(decimal.NewFromInt(100)).Round(2)
	l.Touch()
	return nil
}

// Activate moves the layby from draft to active. Stock reservation for
// every line happens in the same transaction at the application layer,
// which then marks each item reserved via MarkStockReserved.
func (l *Layby) Activate() error {
	if l.Status != LaybyStatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot activate a layby in %s status", l.Status)
	}
	if len(l.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Cannot activate a layby without items")
	}

	now := time.Now()
	l.Status = LaybyStatusActive
	l.ActivatedAt = &now
	l.UpdatedAt = now
	return nil
}

// MarkStockReserved flags every item as reserved at the given instant.
func (l *Layby) MarkStockReserved(now time.Time) {
	for i := range l.Items {
		l.Items[i].StockReserved = true
		reserved := now
		l.Items[i].ReservedAt = &reserved
		l.Items[i].UpdatedAt = now
	}
}

// ReservedItems returns the items whose stock must go back on cancellation.
func (l *Layby) ReservedItems() []LaybyItem {
	reserved := make([]LaybyItem, 0, len(l.Items))
	for _, item := range l.Items {
		if item.StockReserved {
			reserved = append(reserved, item)
		}
	}
	return reserved
}

// RecordPayment applies an instalment's base-currency amount. The first
// payment on an active layby must meet the required deposit; any payment
// exceeding the amount due (beyond PaymentTolerance) is rejected.
func (l *Layby) RecordPayment(baseAmount decimal.Decimal) error {
	if !l.Status.CanAcceptPayment() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot record a payment on a layby in %s status", l.Status)
	}
	if baseAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Payment amount must be positive")
	}
	if l.AmountPaid.IsZero() && baseAmount.LessThan(l.DepositRequired) {
		return shared.NewDomainErrorf(shared.CodeDepositBelowMinimum,
			"First payment of %s is below the required deposit %s", baseAmount, l.DepositRequired)
	}
	if baseAmount.GreaterThan(l.AmountDue.Add(PaymentTolerance)) {
		return shared.NewDomainErrorf(shared.CodePaymentExceedsDue,
			"Payment of %s exceeds amount due %s", baseAmount, l.AmountDue)
	}

	l.AmountPaid = l.AmountPaid.Add(baseAmount)
	l.AmountDue = l.Total.Sub(l.AmountPaid)
	if l.AmountDue.IsNegative() {
		l.AmountDue = decimal.Zero
	}

	if l.AmountDue.LessThanOrEqual(PaymentTolerance) {
		l.Status = LaybyStatusFullyPaid
	} else {
		l.Status = LaybyStatusPartiallyPaid
	}
	l.Touch()
	return nil
}

// Collect hands the goods over once the layby is fully paid.
func (l *Layby) Collect() error {
	if l.Status != LaybyStatusFullyPaid {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot collect a layby in %s status", l.Status)
	}

	now := time.Now()
	l.Status = LaybyStatusCollected
	l.CollectedAt = &now
	l.UpdatedAt = now
	return nil
}

// CancellationRefund is the amount owed back to the customer on
// cancellation: everything paid so far less the cancellation fee, floored
// at zero.
func (l *Layby) CancellationRefund() decimal.Decimal {
	refund := l.AmountPaid.Sub(l.CancellationFee)
	if refund.IsNegative() {
		return decimal.Zero
	}
	return refund
}

// Cancel terminates the layby from any non-terminal status. Returning
// reserved stock and paying out CancellationRefund happen in the same
// transaction at the application layer.
func (l *Layby) Cancel() error {
	if l.Status.IsTerminal() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot cancel a layby in %s status", l.Status)
	}

	now := time.Now()
	l.Status = LaybyStatusCancelled
	l.CancelledAt = &now
	l.UpdatedAt = now
	return nil
}

func (l *Layby) reprice() error {
	lines := make([]pricing.LineInput, len(l.Items))
	for i, item := range l.Items {
		lines[i] = item.toLineInput()
	}

	result, err := pricing.Calculate(lines, l.OrderDiscountPct, pricing.TaxSettings{Mode: l.TaxMode, Rate: l.TaxRate})
	if err != nil {
		return err
	}

	for i := range l.Items {
		l.Items[i].LineTotal = result.Lines[i].Total.Round(2)
	}
	l.Subtotal = result.Subtotal.Round(2)
	l.DiscountAmount = result.OrderDiscountAmount.Round(2)
	l.TaxAmount = result.TaxAmount
	l.Total = result.Total
	l.AmountDue = l.Total.Sub(l.AmountPaid)
	return nil
}

// Package payment implements the shared multi-currency payment record used
// by the sale and layby workflows. Payments are immutable once created:
// corrections happen by adding offsetting payments, never by mutation.
package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TargetType tags which document kind a payment settles.
type TargetType string

const (
	TargetSale  TargetType = "sale"
	TargetLayby TargetType = "layby"
)

// IsValid checks whether the target type is known.
func (t TargetType) IsValid() bool {
	return t == TargetSale || t == TargetLayby
}

// Target is a tagged variant identifying the one document a payment
// belongs to. Modelling it this way makes the sale/layby mutual
// exclusivity a type-level invariant instead of two nullable foreign keys.
type Target struct {
	Type TargetType `gorm:"column:target_type;type:varchar(10);not null;index:idx_payments_target,priority:1"`
	ID   uuid.UUID  `gorm:"column:target_id;type:uuid;not null;index:idx_payments_target,priority:2"`
}

// SaleTarget builds a Target for a sale.
func SaleTarget(saleID uuid.UUID) Target {
	return Target{Type: TargetSale, ID: saleID}
}

// LaybyTarget builds a Target for a layby.
func LaybyTarget(laybyID uuid.UUID) Target {
	return Target{Type: TargetLayby, ID: laybyID}
}

// Payment records money received against a sale or layby. Amount is in the
// tendered currency; BaseAmount carries the converted value using the
// exchange rate snapshotted at creation time.
type Payment struct {
	shared.TenantAggregateRoot
	ReceiptNumber   string `gorm:"type:varchar(20);not null;uniqueIndex:idx_payments_tenant_receipt,priority:2"`
	Target          Target `gorm:"embedded"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	ShiftID         *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CurrencyCode    string          `gorm:"type:varchar(3);not null"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	BaseAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReceivedAt      time.Time       `gorm:"not null"`
	Notes           string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM.
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates an immutable payment record. BaseAmount is computed
// as Amount * ExchangeRate and rounded to cents.
func NewPayment(
	tenantID uuid.UUID,
	receiptNumber string,
	target Target,
	branchID, paymentMethodID uuid.UUID,
	amount decimal.Decimal,
	currencyCode string,
	exchangeRate decimal.Decimal,
	receivedBy uuid.UUID,
) (*Payment, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Receipt number cannot be empty")
	}
	if !target.Type.IsValid() || target.ID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Payment target must reference exactly one sale or layby")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if paymentMethodID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Payment method ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Payment amount must be positive")
	}
	if currencyCode == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Currency code cannot be empty")
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Exchange rate must be positive")
	}

	tendered, err := valueobject.NewMoney(amount, currencyCode)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, receivedBy),
		ReceiptNumber:       receiptNumber,
		Target:              target,
		BranchID:            branchID,
		PaymentMethodID:     paymentMethodID,
		Amount:              amount,
		CurrencyCode:        currencyCode,
		ExchangeRate:        exchangeRate,
		BaseAmount:          tendered.Multiply(exchangeRate).Round(2).Amount(),
		ReceivedAt:          time.Now(),
	}
	return p, nil
}

// Tendered returns the payment as a money value in its tendered currency.
func (p *Payment) Tendered() valueobject.Money {
	return valueobject.MustMoney(p.Amount, p.CurrencyCode)
}

// AttachShift links the payment to the cash drawer shift it was taken in.
// Must be set before the payment is persisted; the record is immutable
// afterwards.
func (p *Payment) AttachShift(shiftID uuid.UUID) {
	if shiftID == uuid.Nil {
		return
	}
	p.ShiftID = &shiftID
}

// SetNotes attaches free-form notes before persisting.
func (p *Payment) SetNotes(notes string) {
	p.Notes = notes
}

// MethodCurrencyTotal is an aggregation bucket used by shift close and
// day-end reconciliation: the summed base-currency amount for one
// (payment method, currency) pair.
type MethodCurrencyTotal struct {
	PaymentMethodID uuid.UUID
	CurrencyCode    string
	BaseAmount      decimal.Decimal
}

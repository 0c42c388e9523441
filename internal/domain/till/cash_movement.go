package till

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementType classifies manual cash movements on an open shift.
type MovementType string

const (
	MovementCashIn      MovementType = "cash_in"
	MovementCashOut     MovementType = "cash_out"
	MovementPettyCash   MovementType = "petty_cash"
	MovementBankDeposit MovementType = "bank_deposit"
)

// IsValid checks whether the movement type is known.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementCashIn, MovementCashOut, MovementPettyCash, MovementBankDeposit:
		return true
	}
	return false
}

// String returns the string representation.
func (t MovementType) String() string {
	return string(t)
}

// Sign returns +1 for movements that add cash to the drawer and -1 for
// movements that take cash out.
func (t MovementType) Sign() decimal.Decimal {
	if t == MovementCashIn {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// CashMovement records cash moved in or out of a drawer outside of sales:
// float top-ups, petty cash, bank deposits. Amount is in the tendered
// currency; BaseAmount carries the converted value using the exchange
// rate snapshotted when the movement was booked. A movement must be
// approved by a supervisor before the shift can close.
type CashMovement struct {
	shared.TenantAggregateRoot
	ShiftID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         MovementType    `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CurrencyCode string          `gorm:"type:varchar(3);not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	BaseAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason       string          `gorm:"type:varchar(255);not null"`
	Approved     bool            `gorm:"not null;default:false"`
	ApprovedBy   *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt   *time.Time
}

// TableName returns the table name for GORM.
func (CashMovement) TableName() string {
	return "cash_movements"
}

// NewCashMovement books a movement against an open shift. Amount is always
// positive; the type carries the direction. BaseAmount is computed as
// Amount * ExchangeRate and rounded to cents.
func NewCashMovement(tenantID, shiftID uuid.UUID, movementType MovementType, amount decimal.Decimal, currencyCode string, exchangeRate decimal.Decimal, reason string, createdBy uuid.UUID) (*CashMovement, error) {
	if shiftID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Shift ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown movement type %q", movementType)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Movement amount must be positive")
	}
	if currencyCode == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Currency code cannot be empty")
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Exchange rate must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Movement reason cannot be empty")
	}

	tendered, err := valueobject.NewMoney(amount, currencyCode)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}

	return &CashMovement{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		ShiftID:             shiftID,
		Type:                movementType,
		Amount:              amount,
		CurrencyCode:        currencyCode,
		ExchangeRate:        exchangeRate,
		BaseAmount:          tendered.Multiply(exchangeRate).Round(2).Amount(),
		Reason:              reason,
	}, nil
}

// SignedAmount is the movement's effect on the drawer in base currency:
// positive for cash_in, negative for all outbound types.
func (m *CashMovement) SignedAmount() decimal.Decimal {
	return m.BaseAmount.Mul(m.Type.Sign())
}

// Approve marks the movement approved. Approval is one-way and idempotent.
func (m *CashMovement) Approve(approverID uuid.UUID) error {
	if approverID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Approver ID cannot be empty")
	}
	if m.Approved {
		return nil
	}

	now := time.Now()
	m.Approved = true
	m.ApprovedBy = &approverID
	m.ApprovedAt = &now
	m.UpdatedAt = now
	return nil
}

// Package till manages cash drawer shifts and the cash movements booked
// against them. A shift tracks one cashier on one till from open to close;
// closing reconciles counted cash against the expected drawer contents.
package till

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShiftStatus represents the status of a shift.
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

// IsValid checks whether the status is a known ShiftStatus.
func (s ShiftStatus) IsValid() bool {
	return s == ShiftStatusOpen || s == ShiftStatusClosed
}

// String returns the string representation.
func (s ShiftStatus) String() string {
	return string(s)
}

// Shift is one cashier's session on a till. Cash amounts are all in the
// tenant's base currency.
type Shift struct {
	shared.TenantAggregateRoot
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TillID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status       ShiftStatus     `gorm:"type:varchar(10);not null;index"`
	OpeningFloat decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CashSales    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MovementsNet decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ExpectedCash decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CountedCash  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Variance     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OpenedAt     time.Time       `gorm:"not null"`
	ClosedAt     *time.Time
	Notes        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM.
func (Shift) TableName() string {
	return "shifts"
}

// NewShift opens a shift with the counted opening float. The one-open-
// shift-per-cashier rule is enforced at the application layer inside the
// opening transaction.
func NewShift(tenantID, branchID, tillID, cashierID uuid.UUID, openingFloat decimal.Decimal) (*Shift, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if tillID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Till ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Cashier ID cannot be empty")
	}
	if openingFloat.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Opening float cannot be negative")
	}

	return &Shift{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, cashierID),
		BranchID:            branchID,
		TillID:              tillID,
		CashierID:           cashierID,
		Status:              ShiftStatusOpen,
		OpeningFloat:        openingFloat,
		OpenedAt:            time.Now(),
	}, nil
}

// IsOpen reports whether the shift is still accepting payments and
// movements.
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}

// Close reconciles the drawer and closes the shift. cashSales is the sum
// of cash payments taken during the shift; movementsNet is the signed sum
// of approved cash movements. Expected cash is recomputed here so the
// stored figure always reflects the inputs it was closed with.
func (s *Shift) Close(countedCash, cashSales, movementsNet decimal.Decimal) error {
	if s.Status != ShiftStatusOpen {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot close a shift in %s status", s.Status)
	}
	if countedCash.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Counted cash cannot be negative")
	}

	now := time.Now()
	s.CashSales = cashSales
	s.MovementsNet = movementsNet
	s.ExpectedCash = s.OpeningFloat.Add(cashSales).Add(movementsNet)
	s.CountedCash = countedCash
	s.Variance = countedCash.Sub(s.ExpectedCash)
	s.Status = ShiftStatusClosed
	s.ClosedAt = &now
	s.UpdatedAt = now
	return nil
}

// SetNotes attaches free-form notes to the shift.
func (s *Shift) SetNotes(notes string) {
	s.Notes = notes
	s.Touch()
}

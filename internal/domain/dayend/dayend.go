// Package dayend implements the per-branch daily reconciliation summary.
// Exactly one day-end exists per branch and business date; shift closes
// create or update it, and supervisors walk it through review and
// approval. A 24 hour window after approval allows reopening for
// corrections.
package dayend

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EditWindow is how long after approval a day-end may still be reopened.
const EditWindow = 24 * time.Hour

// Status represents the status of a day-end summary.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReviewed Status = "reviewed"
	StatusApproved Status = "approved"
	StatusReopened Status = "reopened"
)

// IsValid checks whether the status is a known Status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusReviewed, StatusApproved, StatusReopened:
		return true
	}
	return false
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// IsEditable reports whether reconciliation figures may still change.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusReopened
}

// PaymentLine is one reconciliation row of a day-end: the expected and
// counted totals for a (payment method, currency) pair across the whole
// branch and business date.
type PaymentLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DayEndID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	CurrencyCode    string          `gorm:"type:varchar(3);not null"`
	ExpectedAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CountedAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Variance        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM.
func (PaymentLine) TableName() string {
	return "day_end_payments"
}

// LineInput carries one reconciliation row into ReplacePayments. Expected
// amounts always come from a fresh payment aggregation, never from user
// input.
type LineInput struct {
	PaymentMethodID uuid.UUID
	CurrencyCode    string
	ExpectedAmount  decimal.Decimal
	CountedAmount   decimal.Decimal
}

// ShiftLink ties a closed shift to the day-end it rolled up into.
type ShiftLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DayEndID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ShiftID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM.
func (ShiftLink) TableName() string {
	return "day_end_shifts"
}

// DayEnd is the aggregate root for one branch's daily summary.
// BusinessDate is stored date-only in the branch's local day.
// TotalExpected/TotalCounted/TotalVariance roll up the payment lines;
// TotalSales and TotalShiftVariance roll up the linked shifts.
type DayEnd struct {
	shared.TenantAggregateRoot
	BranchID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_day_ends_branch_date,priority:2"`
	BusinessDate       time.Time       `gorm:"type:date;not null;uniqueIndex:idx_day_ends_branch_date,priority:3"`
	Status             Status          `gorm:"type:varchar(10);not null;index"`
	Payments           []PaymentLine   `gorm:"foreignKey:DayEndID;references:ID"`
	Shifts             []ShiftLink     `gorm:"foreignKey:DayEndID;references:ID"`
	TotalExpected      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCounted       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalVariance      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalSales         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalShiftVariance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes              string          `gorm:"type:varchar(1000)"`
	ReviewedBy         *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt         *time.Time
	ApprovedBy         *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt         *time.Time
	ReopenedBy         *uuid.UUID `gorm:"type:uuid"`
	ReopenedAt         *time.Time
}

// TableName returns the table name for GORM.
func (DayEnd) TableName() string {
	return "day_ends"
}

// NewDayEnd creates a draft summary for the branch's business date. The
// date is truncated to midnight UTC so the branch+date uniqueness holds
// regardless of the caller's clock.
func NewDayEnd(tenantID, branchID uuid.UUID, businessDate time.Time) (*DayEnd, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if businessDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Business date cannot be empty")
	}

	return &DayEnd{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		BusinessDate:        TruncateToDate(businessDate),
		Status:              StatusDraft,
	}, nil
}

// TruncateToDate drops the time-of-day component, keeping a UTC midnight
// instant for the calendar day.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AttachShift links a closed shift to this summary. Attaching the same
// shift twice is a no-op. Links are append-only facts and are recorded
// regardless of status: a shift closing after approval still attaches,
// and the totals catch up when the summary is reopened.
func (d *DayEnd) AttachShift(shiftID uuid.UUID) error {
	if shiftID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Shift ID cannot be empty")
	}
	for _, link := range d.Shifts {
		if link.ShiftID == shiftID {
			return nil
		}
	}

	d.Shifts = append(d.Shifts, ShiftLink{
		ID:        uuid.New(),
		DayEndID:  d.ID,
		ShiftID:   shiftID,
		CreatedAt: time.Now(),
	})
	d.Touch()
	return nil
}

// ReplacePayments swaps the reconciliation rows and recomputes totals.
// Per-line and total variances are derived here, never taken from input.
func (d *DayEnd) ReplacePayments(lines []LineInput) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot edit a day-end in %s status", d.Status)
	}

	now := time.Now()
	rows := make([]PaymentLine, 0, len(lines))
	totalExpected, totalCounted := decimal.Zero, decimal.Zero

	for _, in := range lines {
		if in.PaymentMethodID == uuid.Nil {
			return shared.NewDomainError(shared.CodeValidation, "Payment method ID cannot be empty")
		}
		if in.CurrencyCode == "" {
			return shared.NewDomainError(shared.CodeValidation, "Currency code cannot be empty")
		}

		rows = append(rows, PaymentLine{
			ID:              uuid.New(),
			DayEndID:        d.ID,
			PaymentMethodID: in.PaymentMethodID,
			CurrencyCode:    in.CurrencyCode,
			ExpectedAmount:  in.ExpectedAmount,
			CountedAmount:   in.CountedAmount,
			Variance:        in.CountedAmount.Sub(in.ExpectedAmount),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		totalExpected = totalExpected.Add(in.ExpectedAmount)
		totalCounted = totalCounted.Add(in.CountedAmount)
	}

	d.Payments = rows
	d.TotalExpected = totalExpected
	d.TotalCounted = totalCounted
	d.TotalVariance = totalCounted.Sub(totalExpected)
	d.Touch()
	return nil
}

// ShiftFigure carries one linked shift's contribution to the day-end:
// the base-currency payments taken on the shift and its drawer variance.
type ShiftFigure struct {
	ShiftID  uuid.UUID
	Sales    decimal.Decimal
	Variance decimal.Decimal
}

// RecomputeShiftTotals replaces the shift-level rollup from the linked
// shifts' figures. TotalShiftVariance sums the drawer variances and is
// distinct from TotalVariance, which is derived from the payment lines.
func (d *DayEnd) RecomputeShiftTotals(figures []ShiftFigure) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot edit a day-end in %s status", d.Status)
	}

	sales, variance := decimal.Zero, decimal.Zero
	for _, f := range figures {
		sales = sales.Add(f.Sales)
		variance = variance.Add(f.Variance)
	}
	d.TotalSales = sales
	d.TotalShiftVariance = variance
	d.Touch()
	return nil
}

// SetNotes attaches reviewer notes while the summary is editable.
func (d *DayEnd) SetNotes(notes string) error {
	if !d.Status.IsEditable() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot edit a day-end in %s status", d.Status)
	}
	d.Notes = notes
	d.Touch()
	return nil
}

// Review marks the summary checked by a supervisor.
func (d *DayEnd) Review(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Reviewer ID cannot be empty")
	}
	if !d.Status.IsEditable() {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot review a day-end in %s status", d.Status)
	}

	now := time.Now()
	d.Status = StatusReviewed
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &now
	d.UpdatedAt = now
	return nil
}

// Approve finalizes a reviewed summary and starts the edit window.
func (d *DayEnd) Approve(approverID uuid.UUID) error {
	if approverID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Approver ID cannot be empty")
	}
	if d.Status != StatusReviewed {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot approve a day-end in %s status", d.Status)
	}

	now := time.Now()
	d.Status = StatusApproved
	d.ApprovedBy = &approverID
	d.ApprovedAt = &now
	d.UpdatedAt = now
	return nil
}

// CanEditUntil returns the reopen deadline, or nil while unapproved.
func (d *DayEnd) CanEditUntil() *time.Time {
	if d.ApprovedAt == nil {
		return nil
	}
	deadline := d.ApprovedAt.Add(EditWindow)
	return &deadline
}

// Reopen puts an approved summary back into an editable state. Allowed
// only within EditWindow of approval.
func (d *DayEnd) Reopen(reopenerID uuid.UUID, now time.Time) error {
	if reopenerID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Reopener ID cannot be empty")
	}
	if d.Status != StatusApproved {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot reopen a day-end in %s status", d.Status)
	}
	if deadline := d.CanEditUntil(); deadline != nil && now.After(*deadline) {
		return shared.NewDomainErrorf(shared.CodeEditWindowExpired,
			"Edit window closed at %s", deadline.Format(time.RFC3339))
	}

	d.Status = StatusReopened
	d.ReopenedBy = &reopenerID
	d.ReopenedAt = &now
	d.UpdatedAt = now
	return nil
}

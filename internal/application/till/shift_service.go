// Package till wires the cash drawer workflows: opening and closing
// shifts, booking and approving cash movements, and rolling closed shifts
// up into the branch day-end summary.
package till

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/shared"
	domain "github.com/retailpos/backend/internal/domain/till"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenShiftInput opens a shift on a till.
type OpenShiftInput struct {
	TillID       uuid.UUID       `json:"till_id" binding:"required"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// MovementInput books a cash movement against an open shift.
type MovementInput struct {
	Type         domain.MovementType `json:"type" binding:"required"`
	Amount       decimal.Decimal     `json:"amount" binding:"required"`
	CurrencyCode string              `json:"currency_code" binding:"required,currency_code"`
	Reason       string              `json:"reason" binding:"required"`
}

// CloseShiftInput closes a shift with the cash counted in the drawer.
type CloseShiftInput struct {
	CountedCash decimal.Decimal `json:"counted_cash"`
	Notes       string          `json:"notes"`
}

// CloseShiftResult carries the closed shift and the day-end summary it
// rolled up into.
type CloseShiftResult struct {
	Shift  *domain.Shift  `json:"shift"`
	DayEnd *dayend.DayEnd `json:"day_end"`
}

// ShiftService orchestrates the shift lifecycle.
type ShiftService struct {
	scope  scope.TransactionScope
	ref    catalog.ReferenceReader
	logger *zap.Logger
}

// NewShiftService creates a ShiftService.
func NewShiftService(txScope scope.TransactionScope, ref catalog.ReferenceReader, logger *zap.Logger) *ShiftService {
	return &ShiftService{scope: txScope, ref: ref, logger: logger}
}

// Open starts a shift for the cashier on the given till. A cashier can
// have at most one open shift at a time, tenant-wide.
func (s *ShiftService) Open(ctx context.Context, tenantID, cashierID uuid.UUID, in OpenShiftInput) (*domain.Shift, error) {
	tillRow, err := s.ref.GetTill(ctx, tenantID, in.TillID)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Till %s not found", in.TillID)
	}
	if !tillRow.Active {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Till %s is inactive", tillRow.Name)
	}

	var shift *domain.Shift
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		if open, err := repos.Shifts().FindOpenByCashier(ctx, tenantID, cashierID); err == nil {
			return shared.NewDomainErrorf(shared.CodeAlreadyExists,
				"Cashier already has an open shift %s", open.ID)
		} else if !shared.HasCode(err, shared.CodeNotFound) {
			return err
		}

		shift, err = domain.NewShift(tenantID, tillRow.BranchID, tillRow.ID, cashierID, in.OpeningFloat)
		if err != nil {
			return err
		}
		return repos.Shifts().Save(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shift opened",
		zap.String("shift_id", shift.ID.String()),
		zap.String("till_id", shift.TillID.String()),
		zap.String("cashier_id", cashierID.String()))
	return shift, nil
}

// Get loads a shift.
func (s *ShiftService) Get(ctx context.Context, tenantID, shiftID uuid.UUID) (*domain.Shift, error) {
	var shift *domain.Shift
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		shift, err = repos.Shifts().FindByID(ctx, tenantID, shiftID)
		return err
	})
	return shift, err
}

// List pages through a tenant's shifts.
func (s *ShiftService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[domain.Shift], error) {
	var page *shared.Paginated[domain.Shift]
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		page, err = repos.Shifts().FindAll(ctx, tenantID, filter)
		return err
	})
	return page, err
}

// AddCashMovement books a movement against an open shift. Movements start
// unapproved and block shift close until approved. The tendered currency's
// exchange rate is snapshotted onto the movement at booking time.
func (s *ShiftService) AddCashMovement(ctx context.Context, tenantID, actorID, shiftID uuid.UUID, in MovementInput) (*domain.CashMovement, error) {
	currency, err := s.ref.GetCurrency(ctx, tenantID, in.CurrencyCode)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Currency %s not found", in.CurrencyCode)
	}
	if !currency.Active {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Currency %s is inactive", currency.Code)
	}

	var movement *domain.CashMovement
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		shift, err := repos.Shifts().FindByID(ctx, tenantID, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return shared.NewDomainError(shared.CodeInvalidStateTransition,
				"Cannot book a movement on a closed shift")
		}

		movement, err = domain.NewCashMovement(tenantID, shift.ID, in.Type, in.Amount,
			currency.Code, currency.ExchangeRate, in.Reason, actorID)
		if err != nil {
			return err
		}
		return repos.CashMovements().Save(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash movement booked",
		zap.String("movement_id", movement.ID.String()),
		zap.String("shift_id", shiftID.String()),
		zap.String("type", string(movement.Type)),
		zap.String("amount", movement.Amount.String()))
	return movement, nil
}

// ApproveCashMovement marks a movement approved by a supervisor.
func (s *ShiftService) ApproveCashMovement(ctx context.Context, tenantID, approverID, movementID uuid.UUID) (*domain.CashMovement, error) {
	var movement *domain.CashMovement
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		movement, err = repos.CashMovements().FindByID(ctx, tenantID, movementID)
		if err != nil {
			return err
		}
		if err := movement.Approve(approverID); err != nil {
			return err
		}
		return repos.CashMovements().Save(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash movement approved",
		zap.String("movement_id", movementID.String()),
		zap.String("approver_id", approverID.String()))
	return movement, nil
}

// Close reconciles and closes an open shift, then creates or updates the
// branch day-end summary for the business date, all in one transaction.
// Unapproved movements block the close.
func (s *ShiftService) Close(ctx context.Context, tenantID, shiftID uuid.UUID, in CloseShiftInput) (*CloseShiftResult, error) {
	defaults, err := s.ref.GetTenantDefaults(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant defaults: %w", err)
	}

	var result *CloseShiftResult
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		shift, err := repos.Shifts().FindByID(ctx, tenantID, shiftID)
		if err != nil {
			return err
		}

		unapproved, err := repos.CashMovements().CountUnapproved(ctx, tenantID, shift.ID)
		if err != nil {
			return err
		}
		if unapproved > 0 {
			return shared.NewDomainErrorf(shared.CodeValidation,
				"Shift has %d unapproved cash movements", unapproved)
		}

		cashSales, err := repos.Payments().SumBaseAmountByShiftAndMethod(ctx, tenantID, shift.ID, defaults.CashMethodID)
		if err != nil {
			return err
		}

		movements, err := repos.CashMovements().FindByShift(ctx, tenantID, shift.ID)
		if err != nil {
			return err
		}
		movementsNet := decimal.Zero
		for i := range movements {
			movementsNet = movementsNet.Add(movements[i].SignedAmount())
		}

		if err := shift.Close(in.CountedCash, cashSales, movementsNet); err != nil {
			return err
		}
		shift.SetNotes(in.Notes)
		if err := repos.Shifts().SaveWithLock(ctx, shift); err != nil {
			return fmt.Errorf("save shift: %w", err)
		}

		summary, err := s.rollUpDayEnd(ctx, repos, tenantID, shift)
		if err != nil {
			return err
		}
		result = &CloseShiftResult{Shift: shift, DayEnd: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shift closed",
		zap.String("shift_id", shiftID.String()),
		zap.String("expected_cash", result.Shift.ExpectedCash.String()),
		zap.String("variance", result.Shift.Variance.String()))
	return result, nil
}

// rollUpDayEnd attaches the closed shift to its branch day-end, creating
// the summary on first close of the day, and recomputes the summary's
// totals: expected amounts from a fresh payment aggregation and the shift
// rollup from the linked shifts. Counted amounts entered earlier are
// carried over per method and currency.
func (s *ShiftService) rollUpDayEnd(ctx context.Context, repos scope.Repositories, tenantID uuid.UUID, shift *domain.Shift) (*dayend.DayEnd, error) {
	businessDate := dayend.TruncateToDate(*shift.ClosedAt)

	summary, err := repos.DayEnds().FindByBranchAndDate(ctx, tenantID, shift.BranchID, businessDate)
	if shared.HasCode(err, shared.CodeNotFound) {
		summary, err = dayend.NewDayEnd(tenantID, shift.BranchID, businessDate)
	}
	if err != nil {
		return nil, err
	}

	if err := summary.AttachShift(shift.ID); err != nil {
		return nil, err
	}

	if !summary.Status.IsEditable() {
		// Late close after the summary was already approved: the link is
		// recorded now, the totals recompute is deferred until reopen.
		s.logger.Warn("day-end not editable, deferring totals recompute",
			zap.String("day_end_id", summary.ID.String()),
			zap.String("shift_id", shift.ID.String()))
		if err := repos.DayEnds().Save(ctx, summary); err != nil {
			return nil, fmt.Errorf("save day-end: %w", err)
		}
		return summary, nil
	}

	if err := recomputeTotals(ctx, repos, tenantID, summary); err != nil {
		return nil, err
	}

	if err := repos.DayEnds().Save(ctx, summary); err != nil {
		return nil, fmt.Errorf("save day-end: %w", err)
	}
	return summary, nil
}

// recomputeTotals refreshes both sides of a day-end summary: the payment
// lines from a fresh aggregation, and the shift rollup from the linked
// shifts' sales and variances.
func recomputeTotals(ctx context.Context, repos scope.Repositories, tenantID uuid.UUID, summary *dayend.DayEnd) error {
	lines, err := refreshExpected(ctx, repos, tenantID, summary)
	if err != nil {
		return err
	}
	if err := summary.ReplacePayments(lines); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(summary.Shifts))
	for i, link := range summary.Shifts {
		ids[i] = link.ShiftID
	}
	shifts, err := repos.Shifts().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}

	figures := make([]dayend.ShiftFigure, len(shifts))
	for i := range shifts {
		sales, err := repos.Payments().SumBaseAmountByShift(ctx, tenantID, shifts[i].ID)
		if err != nil {
			return err
		}
		figures[i] = dayend.ShiftFigure{
			ShiftID:  shifts[i].ID,
			Sales:    sales,
			Variance: shifts[i].Variance,
		}
	}
	return summary.RecomputeShiftTotals(figures)
}

// refreshExpected recomputes expected amounts for a day-end from the
// payment records of its branch and business date, preserving any counted
// figures already entered.
func refreshExpected(ctx context.Context, repos scope.Repositories, tenantID uuid.UUID, summary *dayend.DayEnd) ([]dayend.LineInput, error) {
	from := summary.BusinessDate
	to := from.Add(24 * time.Hour)

	totals, err := repos.Payments().TotalsByMethodAndCurrency(ctx, tenantID, summary.BranchID, from, to)
	if err != nil {
		return nil, err
	}

	type key struct {
		method   uuid.UUID
		currency string
	}
	counted := make(map[key]decimal.Decimal, len(summary.Payments))
	for _, line := range summary.Payments {
		counted[key{line.PaymentMethodID, line.CurrencyCode}] = line.CountedAmount
	}

	lines := make([]dayend.LineInput, len(totals))
	for i, total := range totals {
		lines[i] = dayend.LineInput{
			PaymentMethodID: total.PaymentMethodID,
			CurrencyCode:    total.CurrencyCode,
			ExpectedAmount:  total.BaseAmount,
			CountedAmount:   counted[key{total.PaymentMethodID, total.CurrencyCode}],
		}
	}
	return lines, nil
}

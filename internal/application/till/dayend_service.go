package till

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CountedLine is one counted figure entered during reconciliation.
type CountedLine struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	CurrencyCode    string          `json:"currency_code" binding:"required,currency_code"`
	CountedAmount   decimal.Decimal `json:"counted_amount"`
}

// ReconciliationInput updates the counted side of a day-end summary.
type ReconciliationInput struct {
	Lines []CountedLine `json:"lines" binding:"required,dive"`
	Notes string        `json:"notes"`
}

// DayEndService orchestrates review and approval of day-end summaries.
type DayEndService struct {
	scope  scope.TransactionScope
	logger *zap.Logger
}

// NewDayEndService creates a DayEndService.
func NewDayEndService(txScope scope.TransactionScope, logger *zap.Logger) *DayEndService {
	return &DayEndService{scope: txScope, logger: logger}
}

// Get loads a day-end summary.
func (s *DayEndService) Get(ctx context.Context, tenantID, dayEndID uuid.UUID) (*dayend.DayEnd, error) {
	var summary *dayend.DayEnd
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		summary, err = repos.DayEnds().FindByID(ctx, tenantID, dayEndID)
		return err
	})
	return summary, err
}

// GetByBranchAndDate loads the summary for a branch and business date.
func (s *DayEndService) GetByBranchAndDate(ctx context.Context, tenantID, branchID uuid.UUID, date time.Time) (*dayend.DayEnd, error) {
	var summary *dayend.DayEnd
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		summary, err = repos.DayEnds().FindByBranchAndDate(ctx, tenantID, branchID, date)
		return err
	})
	return summary, err
}

// List pages through a tenant's day-end summaries.
func (s *DayEndService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[dayend.DayEnd], error) {
	var page *shared.Paginated[dayend.DayEnd]
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		page, err = repos.DayEnds().FindAll(ctx, tenantID, filter)
		return err
	})
	return page, err
}

// UpdateReconciliation stores counted figures against freshly recomputed
// expected amounts. Expected never comes from the client; it is
// re-aggregated from payment records on every update so stale figures
// cannot be approved.
func (s *DayEndService) UpdateReconciliation(ctx context.Context, tenantID, dayEndID uuid.UUID, in ReconciliationInput) (*dayend.DayEnd, error) {
	var summary *dayend.DayEnd
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		summary, err = repos.DayEnds().FindByID(ctx, tenantID, dayEndID)
		if err != nil {
			return err
		}

		lines, err := refreshExpected(ctx, repos, tenantID, summary)
		if err != nil {
			return err
		}

		type key struct {
			method   uuid.UUID
			currency string
		}
		countedByKey := make(map[key]decimal.Decimal, len(in.Lines))
		for _, line := range in.Lines {
			countedByKey[key{line.PaymentMethodID, line.CurrencyCode}] = line.CountedAmount
		}
		for i := range lines {
			if counted, ok := countedByKey[key{lines[i].PaymentMethodID, lines[i].CurrencyCode}]; ok {
				lines[i].CountedAmount = counted
			}
		}

		if err := summary.ReplacePayments(lines); err != nil {
			return err
		}
		if in.Notes != "" {
			if err := summary.SetNotes(in.Notes); err != nil {
				return err
			}
		}
		return repos.DayEnds().SaveWithLock(ctx, summary)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("day-end reconciliation updated",
		zap.String("day_end_id", dayEndID.String()),
		zap.String("total_variance", summary.TotalVariance.String()))
	return summary, nil
}

// Review marks the summary checked by a supervisor.
func (s *DayEndService) Review(ctx context.Context, tenantID, reviewerID, dayEndID uuid.UUID) (*dayend.DayEnd, error) {
	return s.transition(ctx, tenantID, dayEndID, "day-end reviewed", func(d *dayend.DayEnd) error {
		return d.Review(reviewerID)
	})
}

// Approve finalizes a reviewed summary and starts the 24 hour edit window.
func (s *DayEndService) Approve(ctx context.Context, tenantID, approverID, dayEndID uuid.UUID) (*dayend.DayEnd, error) {
	return s.transition(ctx, tenantID, dayEndID, "day-end approved", func(d *dayend.DayEnd) error {
		return d.Approve(approverID)
	})
}

// Reopen puts an approved summary back into an editable state while the
// edit window is still open. Shifts that closed after approval were
// linked without a totals recompute, so the totals are refreshed here.
func (s *DayEndService) Reopen(ctx context.Context, tenantID, reopenerID, dayEndID uuid.UUID) (*dayend.DayEnd, error) {
	var summary *dayend.DayEnd
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		summary, err = repos.DayEnds().FindByID(ctx, tenantID, dayEndID)
		if err != nil {
			return err
		}
		if err := summary.Reopen(reopenerID, time.Now()); err != nil {
			return err
		}
		if err := recomputeTotals(ctx, repos, tenantID, summary); err != nil {
			return err
		}
		return repos.DayEnds().SaveWithLock(ctx, summary)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("day-end reopened",
		zap.String("day_end_id", dayEndID.String()),
		zap.String("status", string(summary.Status)))
	return summary, nil
}

func (s *DayEndService) transition(ctx context.Context, tenantID, dayEndID uuid.UUID, event string, fn func(*dayend.DayEnd) error) (*dayend.DayEnd, error) {
	var summary *dayend.DayEnd
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		summary, err = repos.DayEnds().FindByID(ctx, tenantID, dayEndID)
		if err != nil {
			return err
		}
		if err := fn(summary); err != nil {
			return err
		}
		return repos.DayEnds().SaveWithLock(ctx, summary)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(event,
		zap.String("day_end_id", dayEndID.String()),
		zap.String("status", string(summary.Status)))
	return summary, nil
}

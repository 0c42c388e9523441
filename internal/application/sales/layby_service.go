package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/payment"
	domain "github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LaybyService orchestrates the layby workflow: drafting, activation with
// stock reservation, instalments, collection and cancellation with stock
// return and refund calculation.
type LaybyService struct {
	scope  scope.TransactionScope
	ref    catalog.ReferenceReader
	logger *zap.Logger
}

// NewLaybyService creates a LaybyService.
func NewLaybyService(txScope scope.TransactionScope, ref catalog.ReferenceReader, logger *zap.Logger) *LaybyService {
	return &LaybyService{scope: txScope, ref: ref, logger: logger}
}

// Create builds a draft layby, snapshotting prices, the branch's deposit
// percentage and its cancellation fee.
func (s *LaybyService) Create(ctx context.Context, tenantID, actorID uuid.UUID, in CreateLaybyInput) (*domain.Layby, error) {
	customer, err := s.ref.GetCustomer(ctx, tenantID, in.CustomerID)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Customer %s not found", in.CustomerID)
	}
	settings, err := s.ref.GetBranchSettings(ctx, tenantID, in.BranchID)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Branch %s not found", in.BranchID)
	}
	snaps, err := buildSnapshots(ctx, s.ref, tenantID, in.Lines)
	if err != nil {
		return nil, err
	}

	var layby *domain.Layby
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		number, err := nextNumber(ctx, repos.Sequences(), tenantID, shared.SeriesLayby, time.Now())
		if err != nil {
			return err
		}

		layby, err = domain.NewLayby(tenantID, number, in.BranchID, in.CustomerID, customer.Name,
			settings.TaxMode, settings.TaxRate, snaps, in.OrderDiscountPct,
			settings.LaybyDepositPct, settings.LaybyCancellationFee, actorID)
		if err != nil {
			return err
		}

		return repos.Laybys().Save(ctx, layby)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("layby created",
		zap.String("layby_id", layby.ID.String()),
		zap.String("number", layby.Number),
		zap.String("deposit_required", layby.DepositRequired.String()))
	return layby, nil
}

// Get loads a layby.
func (s *LaybyService) Get(ctx context.Context, tenantID, laybyID uuid.UUID) (*domain.Layby, error) {
	var layby *domain.Layby
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		layby, err = repos.Laybys().FindByID(ctx, tenantID, laybyID)
		return err
	})
	return layby, err
}

// List pages through a tenant's laybys.
func (s *LaybyService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[domain.Layby], error) {
	var page *shared.Paginated[domain.Layby]
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		page, err = repos.Laybys().FindAll(ctx, tenantID, filter)
		return err
	})
	return page, err
}

// Update replaces the lines of a draft layby before any money was taken.
func (s *LaybyService) Update(ctx context.Context, tenantID, laybyID uuid.UUID, in UpdateLaybyInput) (*domain.Layby, error) {
	snaps, err := buildSnapshots(ctx, s.ref, tenantID, in.Lines)
	if err != nil {
		return nil, err
	}

	var layby *domain.Layby
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		layby, err = repos.Laybys().FindByID(ctx, tenantID, laybyID)
		if err != nil {
			return err
		}
		settings, err := s.ref.GetBranchSettings(ctx, tenantID, layby.BranchID)
		if err != nil {
			return err
		}
		if err := layby.ReplaceItems(snaps, in.OrderDiscountPct, settings.LaybyDepositPct); err != nil {
			return err
		}
		return repos.Laybys().SaveWithLock(ctx, layby)
	})
	if err != nil {
		return nil, err
	}
	return layby, nil
}

// Activate moves a draft layby to active and reserves stock for every
// line in the same transaction.
func (s *LaybyService) Activate(ctx context.Context, tenantID, laybyID uuid.UUID) (*domain.Layby, error) {
	var layby *domain.Layby
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		layby, err = repos.Laybys().FindByID(ctx, tenantID, laybyID)
		if err != nil {
			return err
		}
		if err := layby.Activate(); err != nil {
			return err
		}

		requests := make([]stockRequest, len(layby.Items))
		for i, item := range layby.Items {
			requests[i] = stockRequest{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if err := takeStock(ctx, repos.Stock(), tenantID, layby.BranchID, requests, true); err != nil {
			return err
		}
		layby.MarkStockReserved(time.Now())

		return repos.Laybys().SaveWithLock(ctx, layby)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("layby activated", zap.String("layby_id", layby.ID.String()))
	return layby, nil
}

// AddPayment records one instalment. The domain enforces the deposit
// minimum on the first payment.
func (s *LaybyService) AddPayment(ctx context.Context, tenantID, actorID, laybyID uuid.UUID, in PaymentInput) (*payment.Payment, error) {
	var p *payment.Payment
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		layby, err := repos.Laybys().FindByID(ctx, tenantID, laybyID)
		if err != nil {
			return err
		}

		p, err = buildPayment(ctx, repos, s.ref, tenantID, layby.BranchID, actorID,
			payment.LaybyTarget(layby.ID), in, time.Now())
		if err != nil {
			return err
		}
		if err := layby.RecordPayment(p.BaseAmount); err != nil {
			return err
		}

		if err := repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		return repos.Laybys().SaveWithLock(ctx, layby)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("layby payment recorded",
		zap.String("layby_id", laybyID.String()),
		zap.String("receipt", p.ReceiptNumber),
		zap.String("base_amount", p.BaseAmount.String()))
	return p, nil
}

// Collect hands the goods over on a fully paid layby. Stock already left
// the ledger at activation, so collection only flips the status.
func (s *LaybyService) Collect(ctx context.Context, tenantID, laybyID uuid.UUID) (*domain.Layby, error) {
	var layby *domain.Layby
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		layby, err = repos.Laybys().FindByID(ctx, tenantID, laybyID)
		if err != nil {
			return err
		}
		if err := layby.Collect(); err != nil {
			return err
		}
		return repos.Laybys().SaveWithLock(ctx, layby)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("layby collected", zap.String("layby_id", layby.ID.String()))
	return layby, nil
}

// Cancel terminates a layby, returns every reserved line to stock and
// reports the refund owed to the customer, all in one transaction.
func (s *LaybyService) Cancel(ctx context.Context, tenantID, laybyID uuid.UUID) (*CancelLaybyResult, error) {
	var result *CancelLaybyResult
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		layby, err := repos.Laybys().FindByID(ctx, tenantID, laybyID)
		if err != nil {
			return err
		}
		if err := layby.Cancel(); err != nil {
			return err
		}

		reserved := layby.ReservedItems()
		requests := make([]stockRequest, len(reserved))
		for i, item := range reserved {
			requests[i] = stockRequest{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if err := returnStock(ctx, repos.Stock(), tenantID, layby.BranchID, requests); err != nil {
			return err
		}

		if err := repos.Laybys().SaveWithLock(ctx, layby); err != nil {
			return err
		}
		result = &CancelLaybyResult{Layby: layby, Refund: layby.CancellationRefund()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("layby cancelled",
		zap.String("layby_id", laybyID.String()),
		zap.String("refund", result.Refund.String()))
	return result, nil
}

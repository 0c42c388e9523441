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

// SaleService orchestrates the sale workflow: draft creation, confirmation
// with stock deduction, payments and the composite till sale.
type SaleService struct {
	scope     scope.TransactionScope
	ref       catalog.ReferenceReader
	purchases catalog.CustomerPurchaseRecorder
	logger    *zap.Logger
}

// NewSaleService creates a SaleService.
func NewSaleService(txScope scope.TransactionScope, ref catalog.ReferenceReader, purchases catalog.CustomerPurchaseRecorder, logger *zap.Logger) *SaleService {
	return &SaleService{scope: txScope, ref: ref, purchases: purchases, logger: logger}
}

// Create builds a draft credit sale priced at current catalog prices.
func (s *SaleService) Create(ctx context.Context, tenantID, actorID uuid.UUID, in CreateSaleInput) (*domain.Sale, error) {
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

	var sale *domain.Sale
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		number, err := nextNumber(ctx, repos.Sequences(), tenantID, shared.SeriesInvoice, time.Now())
		if err != nil {
			return err
		}

		sale, err = domain.NewSale(tenantID, number, in.BranchID, in.CustomerID, customer.Name,
			domain.SaleTypeCredit, settings.TaxMode, settings.TaxRate, snaps, in.OrderDiscountPct, actorID)
		if err != nil {
			return err
		}

		return repos.Sales().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("number", sale.Number),
		zap.String("type", string(sale.Type)))
	return sale, nil
}

// Get loads a sale.
func (s *SaleService) Get(ctx context.Context, tenantID, saleID uuid.UUID) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, tenantID, saleID)
		return err
	})
	return sale, err
}

// List pages through a tenant's sales.
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[domain.Sale], error) {
	var page *shared.Paginated[domain.Sale]
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		page, err = repos.Sales().FindAll(ctx, tenantID, filter)
		return err
	})
	return page, err
}

// Update replaces the lines of a draft sale at current catalog prices.
func (s *SaleService) Update(ctx context.Context, tenantID, saleID uuid.UUID, in UpdateSaleInput) (*domain.Sale, error) {
	snaps, err := buildSnapshots(ctx, s.ref, tenantID, in.Lines)
	if err != nil {
		return nil, err
	}

	var sale *domain.Sale
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		sale, err = repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := sale.ReplaceItems(snaps, in.OrderDiscountPct); err != nil {
			return err
		}
		return repos.Sales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Confirm moves a draft sale to confirmed and deducts stock for every
// line in the same transaction. Any line failing leaves all stock intact.
func (s *SaleService) Confirm(ctx context.Context, tenantID, saleID uuid.UUID) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := sale.Confirm(); err != nil {
			return err
		}

		requests := make([]stockRequest, len(sale.Items))
		for i, item := range sale.Items {
			requests[i] = stockRequest{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if err := takeStock(ctx, repos.Stock(), tenantID, sale.BranchID, requests, false); err != nil {
			return err
		}

		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		return s.purchases.RecordPurchase(ctx, tenantID, sale.CustomerID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale confirmed", zap.String("sale_id", sale.ID.String()), zap.String("number", sale.Number))
	return sale, nil
}

// AddPayment records one tender against a confirmed sale.
func (s *SaleService) AddPayment(ctx context.Context, tenantID, actorID, saleID uuid.UUID, in PaymentInput) (*payment.Payment, error) {
	var p *payment.Payment
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}

		p, err = buildPayment(ctx, repos, s.ref, tenantID, sale.BranchID, actorID,
			payment.SaleTarget(sale.ID), in, time.Now())
		if err != nil {
			return err
		}
		if err := sale.RecordPayment(p.BaseAmount); err != nil {
			return err
		}

		if err := repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		return repos.Sales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale payment recorded",
		zap.String("sale_id", saleID.String()),
		zap.String("receipt", p.ReceiptNumber),
		zap.String("base_amount", p.BaseAmount.String()))
	return p, nil
}

// CreateTillSale runs the full counter flow in one transaction: create,
// confirm with stock deduction, take a payment covering the whole total
// and complete. Nothing persists if any step fails.
func (s *SaleService) CreateTillSale(ctx context.Context, tenantID, actorID uuid.UUID, in TillSaleInput) (*domain.Sale, error) {
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

	var sale *domain.Sale
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		now := time.Now()
		number, err := nextNumber(ctx, repos.Sequences(), tenantID, shared.SeriesInvoice, now)
		if err != nil {
			return err
		}

		sale, err = domain.NewSale(tenantID, number, in.BranchID, in.CustomerID, customer.Name,
			domain.SaleTypeTill, settings.TaxMode, settings.TaxRate, snaps, in.OrderDiscountPct, actorID)
		if err != nil {
			return err
		}
		if err := sale.Confirm(); err != nil {
			return err
		}

		requests := make([]stockRequest, len(sale.Items))
		for i, item := range sale.Items {
			requests[i] = stockRequest{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if err := takeStock(ctx, repos.Stock(), tenantID, sale.BranchID, requests, false); err != nil {
			return err
		}

		p, err := buildPayment(ctx, repos, s.ref, tenantID, sale.BranchID, actorID,
			payment.SaleTarget(sale.ID), in.Payment, now)
		if err != nil {
			return err
		}
		if err := sale.RecordPayment(p.BaseAmount); err != nil {
			return err
		}
		if !sale.IsSettled() {
			return shared.NewDomainErrorf(shared.CodeValidation,
				"Till sale payment %s does not cover the total %s", p.BaseAmount, sale.Total)
		}
		if err := sale.Complete(); err != nil {
			return err
		}

		if err := repos.Payments().Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		return s.purchases.RecordPurchase(ctx, tenantID, sale.CustomerID, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("till sale completed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("number", sale.Number),
		zap.String("total", sale.Total.String()))
	return sale, nil
}

// Cancel cancels a draft sale.
func (s *SaleService) Cancel(ctx context.Context, tenantID, saleID uuid.UUID) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := sale.Cancel(); err != nil {
			return err
		}
		return repos.Sales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale cancelled", zap.String("sale_id", sale.ID.String()))
	return sale, nil
}

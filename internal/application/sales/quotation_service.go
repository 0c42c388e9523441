package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/catalog"
	domain "github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QuotationService orchestrates the quotation workflow. Expiry is applied
// lazily: every load through Get flips past-due sent quotations to
// expired and persists the flip.
type QuotationService struct {
	scope  scope.TransactionScope
	ref    catalog.ReferenceReader
	logger *zap.Logger
}

// NewQuotationService creates a QuotationService.
func NewQuotationService(txScope scope.TransactionScope, ref catalog.ReferenceReader, logger *zap.Logger) *QuotationService {
	return &QuotationService{scope: txScope, ref: ref, logger: logger}
}

// Create builds a draft quotation at current catalog prices. Validity
// defaults to the branch's configured days.
func (s *QuotationService) Create(ctx context.Context, tenantID, actorID uuid.UUID, in CreateQuotationInput) (*domain.Quotation, error) {
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

	validityDays := in.ValidityDays
	if validityDays <= 0 {
		validityDays = settings.QuotationValidityDays
	}

	var quotation *domain.Quotation
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		now := time.Now()
		number, err := nextNumber(ctx, repos.Sequences(), tenantID, shared.SeriesQuotation, now)
		if err != nil {
			return err
		}

		quotation, err = domain.NewQuotation(tenantID, number, in.BranchID, in.CustomerID, customer.Name,
			settings.TaxMode, settings.TaxRate, snaps, in.OrderDiscountPct,
			now, now.AddDate(0, 0, validityDays), actorID)
		if err != nil {
			return err
		}

		return repos.Quotations().Save(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("number", quotation.Number))
	return quotation, nil
}

// Get loads a quotation, lazily expiring it when its validity has lapsed.
func (s *QuotationService) Get(ctx context.Context, tenantID, quotationID uuid.UUID) (*domain.Quotation, error) {
	var quotation *domain.Quotation
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		quotation, err = repos.Quotations().FindByID(ctx, tenantID, quotationID)
		if err != nil {
			return err
		}
		if quotation.ExpireIfPast(time.Now()) {
			return repos.Quotations().SaveWithLock(ctx, quotation)
		}
		return nil
	})
	return quotation, err
}

// List pages through a tenant's quotations. Past-due sent quotations are
// reported as expired without being written back; the flip persists on
// their next individual load.
func (s *QuotationService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[domain.Quotation], error) {
	var page *shared.Paginated[domain.Quotation]
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		page, err = repos.Quotations().FindAll(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range page.Items {
		page.Items[i].ExpireIfPast(now)
	}
	return page, nil
}

// Update replaces the lines of a draft quotation at current catalog prices.
func (s *QuotationService) Update(ctx context.Context, tenantID, quotationID uuid.UUID, in UpdateSaleInput) (*domain.Quotation, error) {
	snaps, err := buildSnapshots(ctx, s.ref, tenantID, in.Lines)
	if err != nil {
		return nil, err
	}

	var quotation *domain.Quotation
	err = s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		quotation, err = repos.Quotations().FindByID(ctx, tenantID, quotationID)
		if err != nil {
			return err
		}
		if err := quotation.ReplaceItems(snaps, in.OrderDiscountPct); err != nil {
			return err
		}
		return repos.Quotations().SaveWithLock(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// Send marks a draft quotation as delivered to the customer.
func (s *QuotationService) Send(ctx context.Context, tenantID, quotationID uuid.UUID) (*domain.Quotation, error) {
	var quotation *domain.Quotation
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		quotation, err = repos.Quotations().FindByID(ctx, tenantID, quotationID)
		if err != nil {
			return err
		}
		if err := quotation.Send(); err != nil {
			return err
		}
		return repos.Quotations().SaveWithLock(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation sent", zap.String("quotation_id", quotation.ID.String()))
	return quotation, nil
}

// Reject records the customer declining a sent quotation.
func (s *QuotationService) Reject(ctx context.Context, tenantID, quotationID uuid.UUID) (*domain.Quotation, error) {
	var quotation *domain.Quotation
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		var err error
		quotation, err = repos.Quotations().FindByID(ctx, tenantID, quotationID)
		if err != nil {
			return err
		}
		if err := quotation.Reject(time.Now()); err != nil {
			return err
		}
		return repos.Quotations().SaveWithLock(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation rejected", zap.String("quotation_id", quotation.ID.String()))
	return quotation, nil
}

// ConvertToSale accepts a sent quotation and creates a draft credit sale
// carrying the quoted prices, in one transaction. The sale keeps the
// quoted prices even if catalog prices moved since.
func (s *QuotationService) ConvertToSale(ctx context.Context, tenantID, actorID, quotationID uuid.UUID) (*domain.Sale, error) {
	var sale *domain.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos scope.Repositories) error {
		quotation, err := repos.Quotations().FindByID(ctx, tenantID, quotationID)
		if err != nil {
			return err
		}

		now := time.Now()
		number, err := nextNumber(ctx, repos.Sequences(), tenantID, shared.SeriesInvoice, now)
		if err != nil {
			return err
		}

		sale, err = domain.NewSale(tenantID, number, quotation.BranchID, quotation.CustomerID,
			quotation.CustomerName, domain.SaleTypeCredit, quotation.TaxMode, quotation.TaxRate,
			quotation.ItemSnapshots(), quotation.OrderDiscountPct, actorID)
		if err != nil {
			return err
		}
		sale.SetQuotation(quotation.ID)

		if err := quotation.MarkAccepted(sale.ID, now); err != nil {
			return err
		}

		if err := repos.Sales().Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		return repos.Quotations().SaveWithLock(ctx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation converted",
		zap.String("quotation_id", quotationID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.Number))
	return sale, nil
}

// Recreate builds a fresh draft quotation for the same products and
// quantities at current catalog prices. The source quotation may be in
// any status and is left untouched.
func (s *QuotationService) Recreate(ctx context.Context, tenantID, actorID, quotationID uuid.UUID) (*domain.Quotation, error) {
	source, err := s.Get(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}

	lines := make([]LineInput, len(source.Items))
	for i, item := range source.Items {
		lines[i] = LineInput{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			DiscountPct: item.DiscountPct,
		}
	}

	return s.Create(ctx, tenantID, actorID, CreateQuotationInput{
		BranchID:         source.BranchID,
		CustomerID:       source.CustomerID,
		Lines:            lines,
		OrderDiscountPct: source.OrderDiscountPct,
	})
}

package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/payment"
	domain "github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// buildSnapshots resolves the requested lines against the catalog and
// snapshots current prices. Inactive or unknown products fail the whole
// request.
func buildSnapshots(ctx context.Context, ref catalog.ProductReader, tenantID uuid.UUID, lines []LineInput) ([]domain.ItemSnapshot, error) {
	snaps := make([]domain.ItemSnapshot, 0, len(lines))
	for _, line := range lines {
		product, err := ref.GetProduct(ctx, tenantID, line.ProductID)
		if err != nil {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Product %s not found", line.ProductID)
		}
		if !product.Active {
			return nil, shared.NewDomainErrorf(shared.CodeValidation, "Product %s is inactive", product.Name)
		}

		snaps = append(snaps, domain.ItemSnapshot{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductCode: product.Code,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			DiscountPct: line.DiscountPct,
		})
	}
	return snaps, nil
}

// nextNumber draws the next document number for the series in the current
// year from the transactional counter.
func nextNumber(ctx context.Context, seqs shared.SequenceRepository, tenantID uuid.UUID, series shared.DocumentSeries, now time.Time) (string, error) {
	seq, err := seqs.Next(ctx, tenantID, series, now.Year())
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", series, err)
	}
	return shared.FormatDocumentNumber(series, now.Year(), seq), nil
}

// stockRequest is one product's quantity to move.
type stockRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// takeStock deducts (or reserves) every requested quantity. All rows are
// loaded and checked first, so a failure on any line leaves no row
// mutated even before the transaction rolls back.
func takeStock(ctx context.Context, stock inventory.StockItemRepository, tenantID, branchID uuid.UUID, requests []stockRequest, reserve bool) error {
	items := make([]*inventory.StockItem, len(requests))
	for i, req := range requests {
		item, err := stock.FindByBranchAndProduct(ctx, tenantID, branchID, req.ProductID)
		if err != nil {
			return err
		}
		if !item.CanFulfill(req.Quantity) {
			return shared.NewDomainErrorf(shared.CodeInsufficientStock,
				"Insufficient stock for product %s: have %s, need %s",
				req.ProductID, item.Quantity, req.Quantity)
		}
		items[i] = item
	}

	for i, req := range requests {
		var err error
		if reserve {
			err = items[i].Reserve(req.Quantity)
		} else {
			err = items[i].Deduct(req.Quantity)
		}
		if err != nil {
			return err
		}
		if err := stock.SaveWithLock(ctx, items[i]); err != nil {
			return fmt.Errorf("save stock for product %s: %w", req.ProductID, err)
		}
	}
	return nil
}

// returnStock puts quantities back, creating the stock row if it was
// deleted since reservation.
func returnStock(ctx context.Context, stock inventory.StockItemRepository, tenantID, branchID uuid.UUID, requests []stockRequest) error {
	for _, req := range requests {
		item, err := stock.FindByBranchAndProduct(ctx, tenantID, branchID, req.ProductID)
		if shared.HasCode(err, shared.CodeNoInventoryRecord) {
			item, err = inventory.NewStockItem(tenantID, branchID, req.ProductID, decimal.Zero)
		}
		if err != nil {
			return err
		}
		if err := item.Return(req.Quantity); err != nil {
			return err
		}
		if err := stock.Save(ctx, item); err != nil {
			return fmt.Errorf("save stock for product %s: %w", req.ProductID, err)
		}
	}
	return nil
}

// buildPayment resolves the tender's method and currency, draws a receipt
// number and constructs the payment row with its base-currency amount.
// The caller applies BaseAmount to the document before saving anything.
func buildPayment(
	ctx context.Context,
	repos scope.Repositories,
	ref catalog.ReferenceReader,
	tenantID, branchID, actorID uuid.UUID,
	target payment.Target,
	in PaymentInput,
	now time.Time,
) (*payment.Payment, error) {
	method, err := ref.GetPaymentMethod(ctx, tenantID, in.PaymentMethodID)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Payment method %s not found", in.PaymentMethodID)
	}
	if !method.Active {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Payment method %s is inactive", method.Name)
	}

	currency, err := ref.GetCurrency(ctx, tenantID, in.CurrencyCode)
	if err != nil {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Currency %s not found", in.CurrencyCode)
	}
	if !currency.Active {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Currency %s is inactive", currency.Code)
	}

	receipt, err := nextNumber(ctx, repos.Sequences(), tenantID, shared.SeriesReceipt, now)
	if err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(tenantID, receipt, target, branchID, method.ID,
		in.Amount, currency.Code, currency.ExchangeRate, actorID)
	if err != nil {
		return nil, err
	}
	if in.ShiftID != nil {
		p.AttachShift(*in.ShiftID)
	}
	p.SetNotes(in.Notes)
	return p, nil
}

package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	domain "github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createQuotation(t *testing.T, f *fixture, productID uuid.UUID) *domain.Quotation {
	t.Helper()
	q, err := f.quotations.Create(context.Background(), f.ref.TenantID, uuid.New(), CreateQuotationInput{
		BranchID:   f.ref.BranchID,
		CustomerID: f.ref.CustomerID,
		Lines:      []LineInput{{ProductID: productID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	return q
}

func TestQuotationService_Create(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(100, 10)

	q := createQuotation(t, f, productID)

	assert.Equal(t, fmt.Sprintf("QT%d-00001", time.Now().Year()), q.Number)
	assert.Equal(t, domain.QuotationStatusDraft, q.Status)
	assert.True(t, q.Total.Equal(decimal.NewFromInt(230)), "total=%s", q.Total)

	// Branch default validity is 14 days.
	wantExpiry := q.QuotationDate.AddDate(0, 0, 14)
	assert.WithinDuration(t, wantExpiry, q.ExpiryDate, time.Second)

	// Quotations never touch stock.
	assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(10)))
}

func TestQuotationService_GetExpiresLazily(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(100, 10)
	ctx := context.Background()

	q := createQuotation(t, f, productID)
	_, err := f.quotations.Send(ctx, f.ref.TenantID, q.ID)
	require.NoError(t, err)

	// Force the expiry into the past, then read.
	f.store.QuotationsByID[q.ID].ExpiryDate = time.Now().Add(-time.Hour)

	reloaded, err := f.quotations.Get(ctx, f.ref.TenantID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, reloaded.Status)

	// The flip was persisted, not just reported.
	assert.Equal(t, domain.QuotationStatusExpired, f.store.QuotationsByID[q.ID].Status)
}

func TestQuotationService_ConvertToSale(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps quoted prices", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		q := createQuotation(t, f, productID)
		_, err := f.quotations.Send(ctx, f.ref.TenantID, q.ID)
		require.NoError(t, err)

		// Catalog price moves after the quote went out.
		p := f.ref.Products[productID]
		p.Price = decimal.NewFromInt(150)
		f.ref.Products[productID] = p

		sale, err := f.quotations.ConvertToSale(ctx, f.ref.TenantID, uuid.New(), q.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.SaleStatusDraft, sale.Status)
		assert.True(t, sale.Items[0].UnitPrice.Equal(decimal.NewFromInt(100)), "price=%s", sale.Items[0].UnitPrice)
		assert.True(t, sale.Total.Equal(decimal.NewFromInt(230)))
		require.NotNil(t, sale.QuotationID)
		assert.Equal(t, q.ID, *sale.QuotationID)

		accepted := f.store.QuotationsByID[q.ID]
		assert.Equal(t, domain.QuotationStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.ConvertedSaleID)
		assert.Equal(t, sale.ID, *accepted.ConvertedSaleID)
	})

	t.Run("expired quotation does not convert", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		q := createQuotation(t, f, productID)
		_, err := f.quotations.Send(ctx, f.ref.TenantID, q.ID)
		require.NoError(t, err)
		f.store.QuotationsByID[q.ID].ExpiryDate = time.Now().Add(-time.Hour)

		_, err = f.quotations.ConvertToSale(ctx, f.ref.TenantID, uuid.New(), q.ID)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition), "got %v", err)
		assert.Empty(t, f.store.SalesByID)
	})

	t.Run("draft quotation does not convert", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		q := createQuotation(t, f, productID)
		_, err := f.quotations.ConvertToSale(ctx, f.ref.TenantID, uuid.New(), q.ID)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestQuotationService_Reject(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(100, 10)
	ctx := context.Background()

	q := createQuotation(t, f, productID)
	_, err := f.quotations.Send(ctx, f.ref.TenantID, q.ID)
	require.NoError(t, err)

	rejected, err := f.quotations.Reject(ctx, f.ref.TenantID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusRejected, rejected.Status)
}

func TestQuotationService_Recreate(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(100, 10)
	ctx := context.Background()

	q := createQuotation(t, f, productID)
	_, err := f.quotations.Send(ctx, f.ref.TenantID, q.ID)
	require.NoError(t, err)
	f.store.QuotationsByID[q.ID].ExpiryDate = time.Now().Add(-time.Hour)

	// Price moved since the original quote.
	p := f.ref.Products[productID]
	p.Price = decimal.NewFromInt(150)
	f.ref.Products[productID] = p

	fresh, err := f.quotations.Recreate(ctx, f.ref.TenantID, uuid.New(), q.ID)
	require.NoError(t, err)

	assert.NotEqual(t, q.ID, fresh.ID)
	assert.Equal(t, fmt.Sprintf("QT%d-00002", time.Now().Year()), fresh.Number)
	assert.Equal(t, domain.QuotationStatusDraft, fresh.Status)
	assert.True(t, fresh.Items[0].UnitPrice.Equal(decimal.NewFromInt(150)), "price=%s", fresh.Items[0].UnitPrice)
	// 300 + 15% tax
	assert.True(t, fresh.Total.Equal(decimal.NewFromInt(345)), "total=%s", fresh.Total)

	// The source stays expired.
	assert.Equal(t, domain.QuotationStatusExpired, f.store.QuotationsByID[q.ID].Status)
}

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

func createLayby(t *testing.T, f *fixture, productID uuid.UUID) *domain.Layby {
	t.Helper()
	l, err := f.laybys.Create(context.Background(), f.ref.TenantID, uuid.New(), CreateLaybyInput{
		BranchID:   f.ref.BranchID,
		CustomerID: f.ref.CustomerID,
		Lines:      []LineInput{{ProductID: productID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	return l
}

func activatedLayby(t *testing.T, f *fixture, productID uuid.UUID) *domain.Layby {
	t.Helper()
	l := createLayby(t, f, productID)
	activated, err := f.laybys.Activate(context.Background(), f.ref.TenantID, l.ID)
	require.NoError(t, err)
	return activated
}

func TestLaybyService_Create(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(100, 10)

	l := createLayby(t, f, productID)

	assert.Equal(t, fmt.Sprintf("LB%d-00001", time.Now().Year()), l.Number)
	assert.Equal(t, domain.LaybyStatusDraft, l.Status)
	// Total 230, branch deposit 20%, fee 25.
	assert.True(t, l.Total.Equal(decimal.NewFromInt(230)), "total=%s", l.Total)
	assert.True(t, l.DepositRequired.Equal(decimal.NewFromInt(46)), "deposit=%s", l.DepositRequired)
	assert.True(t, l.CancellationFee.Equal(decimal.NewFromInt(25)))

	// Drafts reserve nothing.
	assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(10)))
}

func TestLaybyService_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves stock and flags items", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		l := activatedLayby(t, f, productID)

		assert.Equal(t, domain.LaybyStatusActive, l.Status)
		assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(8)))
		for _, item := range l.Items {
			assert.True(t, item.StockReserved)
			assert.NotNil(t, item.ReservedAt)
		}
	})

	t.Run("insufficient stock blocks activation", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 1)

		l := createLayby(t, f, productID)
		_, err := f.laybys.Activate(ctx, f.ref.TenantID, l.ID)
		assert.True(t, shared.HasCode(err, shared.CodeInsufficientStock))
		assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(1)))
	})
}

func TestLaybyService_AddPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("first payment below deposit rejected", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)
		l := activatedLayby(t, f, productID) // deposit 46

		_, err := f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), l.ID, f.cashPayment(45))
		assert.True(t, shared.HasCode(err, shared.CodeDepositBelowMinimum), "got %v", err)
		assert.Empty(t, f.store.PaymentRows)
	})

	t.Run("instalments to fully paid", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)
		l := activatedLayby(t, f, productID)

		_, err := f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), l.ID, f.cashPayment(46))
		require.NoError(t, err)
		_, err = f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), l.ID, f.cashPayment(184))
		require.NoError(t, err)

		reloaded, err := f.laybys.Get(ctx, f.ref.TenantID, l.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LaybyStatusFullyPaid, reloaded.Status)
		assert.True(t, reloaded.AmountDue.IsZero())
		assert.Len(t, f.store.PaymentRows, 2)
	})
}

func TestLaybyService_Collect(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(100, 10)
	ctx := context.Background()

	l := activatedLayby(t, f, productID)
	_, err := f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), l.ID, f.cashPayment(230))
	require.NoError(t, err)

	collected, err := f.laybys.Collect(ctx, f.ref.TenantID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LaybyStatusCollected, collected.Status)

	// Collection moves no stock; it already left at activation.
	assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(8)))
}

func TestLaybyService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("returns reserved stock and computes refund", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		l := activatedLayby(t, f, productID)
		_, err := f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), l.ID, f.cashPayment(100))
		require.NoError(t, err)

		result, err := f.laybys.Cancel(ctx, f.ref.TenantID, l.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.LaybyStatusCancelled, result.Layby.Status)
		// 100 paid - 25 fee
		assert.True(t, result.Refund.Equal(decimal.NewFromInt(75)), "refund=%s", result.Refund)
		assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(10)))
	})

	t.Run("refund floors at zero", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		l := createLayby(t, f, productID)
		result, err := f.laybys.Cancel(ctx, f.ref.TenantID, l.ID)
		require.NoError(t, err)
		assert.True(t, result.Refund.IsZero())
	})

	t.Run("draft cancel returns no stock", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		l := createLayby(t, f, productID)
		_, err := f.laybys.Cancel(ctx, f.ref.TenantID, l.ID)
		require.NoError(t, err)
		assert.True(t, f.store.StockQty(f.ref.TenantID, f.ref.BranchID, productID).Equal(decimal.NewFromInt(10)))
	})

	t.Run("collected layby cannot be cancelled", func(t *testing.T) {
		f := newFixture()
		productID := f.seedProduct(100, 10)

		l := activatedLayby(t, f, productID)
		_, err := f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), l.ID, f.cashPayment(230))
		require.NoError(t, err)
		_, err = f.laybys.Collect(ctx, f.ref.TenantID, l.ID)
		require.NoError(t, err)

		_, err = f.laybys.Cancel(ctx, f.ref.TenantID, l.ID)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestLaybyService_Update(t *testing.T) {
	f := newFixture()
	p1 := f.seedProduct(100, 10)
	p2 := f.seedProduct(50, 10)
	ctx := context.Background()

	l := createLayby(t, f, p1)
	updated, err := f.laybys.Update(ctx, f.ref.TenantID, l.ID, UpdateLaybyInput{
		Lines: []LineInput{{ProductID: p2, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	// 50 + 15% = 57.50, deposit 20% = 11.50
	assert.True(t, updated.Total.Equal(decimal.NewFromFloat(57.5)))
	assert.True(t, updated.DepositRequired.Equal(decimal.NewFromFloat(11.5)))

	t.Run("frozen after first payment", func(t *testing.T) {
		active := activatedLayby(t, f, p1)
		_, err := f.laybys.AddPayment(ctx, f.ref.TenantID, uuid.New(), active.ID, f.cashPayment(46))
		require.NoError(t, err)

		_, err = f.laybys.Update(ctx, f.ref.TenantID, active.ID, UpdateLaybyInput{
			Lines: []LineInput{{ProductID: p2, Quantity: decimal.NewFromInt(1)}},
		})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(price float64, qty int64) ItemSnapshot {
	return ItemSnapshot{
		ProductID:   uuid.New(),
		ProductName: "Widget",
		ProductCode: "WID-001",
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromFloat(price),
		DiscountPct: decimal.Zero,
	}
}

func newTestSale(t *testing.T, saleType SaleType) *Sale {
	t.Helper()
	sale, err := NewSale(
		uuid.New(), "INV2026-00001", uuid.New(), uuid.New(), "Acme Ltd",
		saleType, catalog.TaxModeExclusive, decimal.NewFromInt(15),
		[]ItemSnapshot{snapshot(100, 2)}, decimal.Zero, uuid.New(),
	)
	require.NoError(t, err)
	return sale
}

func TestNewSale(t *testing.T) {
	t.Run("prices items at creation", func(t *testing.T) {
		sale := newTestSale(t, SaleTypeCredit)

		assert.Equal(t, SaleStatusDraft, sale.Status)
		assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal=%s", sale.Subtotal)
		assert.True(t, sale.TaxAmount.Equal(decimal.NewFromInt(30)), "tax=%s", sale.TaxAmount)
		assert.True(t, sale.Total.Equal(decimal.NewFromInt(230)), "total=%s", sale.Total)
		assert.True(t, sale.AmountDue.Equal(sale.Total))
		assert.True(t, sale.AmountPaid.IsZero())
		require.Len(t, sale.Items, 1)
		assert.True(t, sale.Items[0].LineTotal.Equal(decimal.NewFromInt(200)))
	})

	t.Run("validation failures", func(t *testing.T) {
		tenant, branch, customer, by := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		items := []ItemSnapshot{snapshot(10, 1)}
		rate := decimal.NewFromInt(15)

		tests := []struct {
			name string
			fn   func() (*Sale, error)
		}{
			{"empty number", func() (*Sale, error) {
				return NewSale(tenant, "", branch, customer, "c", SaleTypeCredit, catalog.TaxModeExclusive, rate, items, decimal.Zero, by)
			}},
			{"nil customer", func() (*Sale, error) {
				return NewSale(tenant, "INV2026-00002", branch, uuid.Nil, "c", SaleTypeCredit, catalog.TaxModeExclusive, rate, items, decimal.Zero, by)
			}},
			{"unknown type", func() (*Sale, error) {
				return NewSale(tenant, "INV2026-00002", branch, customer, "c", SaleType("wholesale"), catalog.TaxModeExclusive, rate, items, decimal.Zero, by)
			}},
			{"no items", func() (*Sale, error) {
				return NewSale(tenant, "INV2026-00002", branch, customer, "c", SaleTypeCredit, catalog.TaxModeExclusive, rate, nil, decimal.Zero, by)
			}},
			{"zero quantity item", func() (*Sale, error) {
				bad := snapshot(10, 1)
				bad.Quantity = decimal.Zero
				return NewSale(tenant, "INV2026-00002", branch, customer, "c", SaleTypeCredit, catalog.TaxModeExclusive, rate, []ItemSnapshot{bad}, decimal.Zero, by)
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := tt.fn()
				assert.True(t, shared.HasCode(err, shared.CodeValidation), "got %v", err)
			})
		}
	})
}

func TestSaleStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    SaleStatus
		to      SaleStatus
		allowed bool
	}{
		{SaleStatusDraft, SaleStatusConfirmed, true},
		{SaleStatusDraft, SaleStatusCancelled, true},
		{SaleStatusDraft, SaleStatusFullyPaid, false},
		{SaleStatusConfirmed, SaleStatusPartiallyPaid, true},
		{SaleStatusConfirmed, SaleStatusFullyPaid, true},
		{SaleStatusConfirmed, SaleStatusCancelled, false},
		{SaleStatusPartiallyPaid, SaleStatusFullyPaid, true},
		{SaleStatusPartiallyPaid, SaleStatusCancelled, false},
		{SaleStatusFullyPaid, SaleStatusCompleted, true},
		{SaleStatusCompleted, SaleStatusCancelled, false},
		{SaleStatusCancelled, SaleStatusConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestSale_Confirm(t *testing.T) {
	sale := newTestSale(t, SaleTypeCredit)
	require.NoError(t, sale.Confirm())
	assert.Equal(t, SaleStatusConfirmed, sale.Status)
	assert.NotNil(t, sale.ConfirmedAt)

	err := sale.Confirm()
	assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
}

func TestSale_RecordPayment(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		sale := newTestSale(t, SaleTypeCredit) // total 230
		require.NoError(t, sale.Confirm())

		require.NoError(t, sale.RecordPayment(decimal.NewFromInt(100)))
		assert.Equal(t, SaleStatusPartiallyPaid, sale.Status)
		assert.True(t, sale.AmountDue.Equal(decimal.NewFromInt(130)))

		require.NoError(t, sale.RecordPayment(decimal.NewFromInt(130)))
		assert.Equal(t, SaleStatusFullyPaid, sale.Status)
		assert.True(t, sale.AmountDue.IsZero())
		assert.True(t, sale.AmountPaid.Add(sale.AmountDue).Equal(sale.Total))
	})

	t.Run("rejects payment above due", func(t *testing.T) {
		sale := newTestSale(t, SaleTypeCredit)
		require.NoError(t, sale.Confirm())

		err := sale.RecordPayment(decimal.NewFromFloat(230.02))
		assert.True(t, shared.HasCode(err, shared.CodePaymentExceedsDue))
		assert.True(t, sale.AmountPaid.IsZero())
	})

	t.Run("tolerates cent rounding overshoot", func(t *testing.T) {
		sale := newTestSale(t, SaleTypeCredit)
		require.NoError(t, sale.Confirm())

		require.NoError(t, sale.RecordPayment(decimal.NewFromFloat(230.01)))
		assert.Equal(t, SaleStatusFullyPaid, sale.Status)
		assert.True(t, sale.AmountDue.IsZero(), "due=%s", sale.AmountDue)
	})

	t.Run("rejected on draft", func(t *testing.T) {
		sale := newTestSale(t, SaleTypeCredit)
		err := sale.RecordPayment(decimal.NewFromInt(10))
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestSale_Complete(t *testing.T) {
	sale := newTestSale(t, SaleTypeTill)
	require.NoError(t, sale.Confirm())
	require.NoError(t, sale.RecordPayment(decimal.NewFromInt(230)))
	require.NoError(t, sale.Complete())
	assert.Equal(t, SaleStatusCompleted, sale.Status)
	assert.NotNil(t, sale.CompletedAt)

	t.Run("requires full payment", func(t *testing.T) {
		partial := newTestSale(t, SaleTypeTill)
		require.NoError(t, partial.Confirm())
		require.NoError(t, partial.RecordPayment(decimal.NewFromInt(100)))
		err := partial.Complete()
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestSale_Cancel(t *testing.T) {
	sale := newTestSale(t, SaleTypeCredit)
	require.NoError(t, sale.Cancel())
	assert.Equal(t, SaleStatusCancelled, sale.Status)

	t.Run("confirmed sale cannot be cancelled", func(t *testing.T) {
		confirmed := newTestSale(t, SaleTypeCredit)
		require.NoError(t, confirmed.Confirm())
		err := confirmed.Cancel()
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestSale_ReplaceItems(t *testing.T) {
	sale := newTestSale(t, SaleTypeCredit)
	require.NoError(t, sale.ReplaceItems([]ItemSnapshot{snapshot(50, 1)}, decimal.NewFromInt(10)))

	require.Len(t, sale.Items, 1)
	// 50 - 10% = 45, + 15% tax = 51.75
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(51.75)), "total=%s", sale.Total)

	t.Run("frozen after confirm", func(t *testing.T) {
		confirmed := newTestSale(t, SaleTypeCredit)
		require.NoError(t, confirmed.Confirm())
		err := confirmed.ReplaceItems([]ItemSnapshot{snapshot(50, 1)}, decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

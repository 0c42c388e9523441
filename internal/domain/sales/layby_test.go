package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLayby builds a layby with total 230 (200 + 15% tax), 20% deposit
// (46.00) and a 25.00 cancellation fee.
func newTestLayby(t *testing.T) *Layby {
	t.Helper()
	l, err := NewLayby(
		uuid.New(), "LB2026-00001", uuid.New(), uuid.New(), "Acme Ltd",
		catalog.TaxModeExclusive, decimal.NewFromInt(15),
		[]ItemSnapshot{snapshot(100, 2)}, decimal.Zero,
		decimal.NewFromInt(20), decimal.NewFromInt(25), uuid.New(),
	)
	require.NoError(t, err)
	return l
}

func activatedLayby(t *testing.T) *Layby {
	t.Helper()
	l := newTestLayby(t)
	require.NoError(t, l.Activate())
	return l
}

func TestNewLayby(t *testing.T) {
	l := newTestLayby(t)
	assert.Equal(t, LaybyStatusDraft, l.Status)
	assert.True(t, l.Total.Equal(decimal.NewFromInt(230)), "total=%s", l.Total)
	assert.True(t, l.DepositRequired.Equal(decimal.NewFromInt(46)), "deposit=%s", l.DepositRequired)

	t.Run("rejects deposit percentage above 100", func(t *testing.T) {
		_, err := NewLayby(
			uuid.New(), "LB2026-00002", uuid.New(), uuid.New(), "Acme Ltd",
			catalog.TaxModeExclusive, decimal.NewFromInt(15),
			[]ItemSnapshot{snapshot(100, 1)}, decimal.Zero,
			decimal.NewFromInt(120), decimal.Zero, uuid.New(),
		)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestLayby_Activate(t *testing.T) {
	l := newTestLayby(t)
	require.NoError(t, l.Activate())
	assert.Equal(t, LaybyStatusActive, l.Status)
	assert.NotNil(t, l.ActivatedAt)

	err := l.Activate()
	assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
}

func TestLayby_MarkStockReserved(t *testing.T) {
	l := activatedLayby(t)
	now := time.Now()
	l.MarkStockReserved(now)

	reserved := l.ReservedItems()
	require.Len(t, reserved, len(l.Items))
	for _, item := range reserved {
		assert.True(t, item.StockReserved)
		require.NotNil(t, item.ReservedAt)
		assert.Equal(t, now, *item.ReservedAt)
	}
}

func TestLayby_RecordPayment(t *testing.T) {
	t.Run("first payment must meet deposit", func(t *testing.T) {
		l := activatedLayby(t) // deposit 46
		err := l.RecordPayment(decimal.NewFromInt(45))
		assert.True(t, shared.HasCode(err, shared.CodeDepositBelowMinimum))
		assert.True(t, l.AmountPaid.IsZero())

		require.NoError(t, l.RecordPayment(decimal.NewFromInt(46)))
		assert.Equal(t, LaybyStatusPartiallyPaid, l.Status)
	})

	t.Run("later instalments can be any size", func(t *testing.T) {
		l := activatedLayby(t)
		require.NoError(t, l.RecordPayment(decimal.NewFromInt(46)))
		require.NoError(t, l.RecordPayment(decimal.NewFromInt(4)))
		assert.True(t, l.AmountDue.Equal(decimal.NewFromInt(180)))
	})

	t.Run("pay off flips to fully paid", func(t *testing.T) {
		l := activatedLayby(t)
		require.NoError(t, l.RecordPayment(decimal.NewFromInt(230)))
		assert.Equal(t, LaybyStatusFullyPaid, l.Status)
		assert.True(t, l.AmountDue.IsZero())
	})

	t.Run("rejects payment above due", func(t *testing.T) {
		l := activatedLayby(t)
		err := l.RecordPayment(decimal.NewFromFloat(230.02))
		assert.True(t, shared.HasCode(err, shared.CodePaymentExceedsDue))
	})

	t.Run("rejected on draft", func(t *testing.T) {
		l := newTestLayby(t)
		err := l.RecordPayment(decimal.NewFromInt(46))
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestLayby_Collect(t *testing.T) {
	l := activatedLayby(t)
	require.NoError(t, l.RecordPayment(decimal.NewFromInt(230)))
	require.NoError(t, l.Collect())
	assert.Equal(t, LaybyStatusCollected, l.Status)
	assert.NotNil(t, l.CollectedAt)

	t.Run("requires full payment", func(t *testing.T) {
		partial := activatedLayby(t)
		require.NoError(t, partial.RecordPayment(decimal.NewFromInt(46)))
		err := partial.Collect()
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestLayby_CancellationRefund(t *testing.T) {
	tests := []struct {
		name   string
		paid   decimal.Decimal
		refund decimal.Decimal
	}{
		{"nothing paid", decimal.Zero, decimal.Zero},
		{"paid below fee", decimal.NewFromInt(20), decimal.Zero},
		{"paid above fee", decimal.NewFromInt(100), decimal.NewFromInt(75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLayby(t) // fee 25
			l.AmountPaid = tt.paid
			assert.True(t, l.CancellationRefund().Equal(tt.refund),
				"refund=%s", l.CancellationRefund())
		})
	}
}

func TestLayby_Cancel(t *testing.T) {
	t.Run("allowed while money is outstanding", func(t *testing.T) {
		l := activatedLayby(t)
		require.NoError(t, l.RecordPayment(decimal.NewFromInt(46)))
		require.NoError(t, l.Cancel())
		assert.Equal(t, LaybyStatusCancelled, l.Status)
	})

	t.Run("collected layby cannot be cancelled", func(t *testing.T) {
		l := activatedLayby(t)
		require.NoError(t, l.RecordPayment(decimal.NewFromInt(230)))
		require.NoError(t, l.Collect())
		err := l.Cancel()
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestLayby_CanUpdate(t *testing.T) {
	l := newTestLayby(t)
	assert.True(t, l.CanUpdate())

	require.NoError(t, l.Activate())
	assert.False(t, l.CanUpdate())

	t.Run("replace items reprices and recomputes deposit", func(t *testing.T) {
		draft := newTestLayby(t)
		require.NoError(t, draft.ReplaceItems(
			[]ItemSnapshot{snapshot(50, 1)}, decimal.Zero, decimal.NewFromInt(50)))
		// 50 + 15% tax = 57.50, deposit 50% = 28.75
		assert.True(t, draft.Total.Equal(decimal.NewFromFloat(57.5)), "total=%s", draft.Total)
		assert.True(t, draft.DepositRequired.Equal(decimal.NewFromFloat(28.75)), "deposit=%s", draft.DepositRequired)
	})
}

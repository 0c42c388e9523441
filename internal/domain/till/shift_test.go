package till

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShift(t *testing.T, openingFloat int64) *Shift {
	t.Helper()
	s, err := NewShift(uuid.New(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(openingFloat))
	require.NoError(t, err)
	return s
}

func TestNewShift(t *testing.T) {
	s := newTestShift(t, 500)
	assert.Equal(t, ShiftStatusOpen, s.Status)
	assert.True(t, s.IsOpen())
	assert.True(t, s.OpeningFloat.Equal(decimal.NewFromInt(500)))

	t.Run("rejects negative opening float", func(t *testing.T) {
		_, err := NewShift(uuid.New(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(-1))
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects nil till", func(t *testing.T) {
		_, err := NewShift(uuid.New(), uuid.New(), uuid.Nil, uuid.New(), decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestShift_Close(t *testing.T) {
	t.Run("computes expected cash and variance", func(t *testing.T) {
		s := newTestShift(t, 500)

		// expected = 500 + 1200 cash sales - 150 net movements = 1550
		err := s.Close(decimal.NewFromInt(1540), decimal.NewFromInt(1200), decimal.NewFromInt(-150))
		require.NoError(t, err)

		assert.Equal(t, ShiftStatusClosed, s.Status)
		assert.True(t, s.ExpectedCash.Equal(decimal.NewFromInt(1550)), "expected=%s", s.ExpectedCash)
		assert.True(t, s.Variance.Equal(decimal.NewFromInt(-10)), "variance=%s", s.Variance)
		assert.NotNil(t, s.ClosedAt)
	})

	t.Run("already closed", func(t *testing.T) {
		s := newTestShift(t, 100)
		require.NoError(t, s.Close(decimal.NewFromInt(100), decimal.Zero, decimal.Zero))

		err := s.Close(decimal.NewFromInt(100), decimal.Zero, decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidStateTransition))
	})

	t.Run("rejects negative counted cash", func(t *testing.T) {
		s := newTestShift(t, 100)
		err := s.Close(decimal.NewFromInt(-5), decimal.Zero, decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestNewCashMovement(t *testing.T) {
	one := decimal.NewFromInt(1)

	t.Run("valid", func(t *testing.T) {
		m, err := NewCashMovement(uuid.New(), uuid.New(), MovementPettyCash, decimal.NewFromInt(50), "USD", one, "stationery", uuid.New())
		require.NoError(t, err)
		assert.False(t, m.Approved)
		assert.Equal(t, "USD", m.CurrencyCode)
		assert.True(t, m.BaseAmount.Equal(decimal.NewFromInt(50)))
		assert.True(t, m.SignedAmount().Equal(decimal.NewFromInt(-50)))
	})

	t.Run("converts non-base currency through the rate snapshot", func(t *testing.T) {
		m, err := NewCashMovement(uuid.New(), uuid.New(), MovementCashIn,
			decimal.NewFromInt(100), "EUR", decimal.NewFromFloat(1.1), "float top-up", uuid.New())
		require.NoError(t, err)
		assert.True(t, m.BaseAmount.Equal(decimal.NewFromInt(110)), "base=%s", m.BaseAmount)
		assert.True(t, m.SignedAmount().Equal(decimal.NewFromInt(110)))

		out, err := NewCashMovement(uuid.New(), uuid.New(), MovementBankDeposit,
			decimal.NewFromInt(350), "THB", decimal.NewFromFloat(0.028), "bank run", uuid.New())
		require.NoError(t, err)
		assert.True(t, out.SignedAmount().Equal(decimal.NewFromFloat(-9.80)), "signed=%s", out.SignedAmount())
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			fn   func() (*CashMovement, error)
		}{
			{"nil shift", func() (*CashMovement, error) {
				return NewCashMovement(uuid.New(), uuid.Nil, MovementCashIn, decimal.NewFromInt(1), "USD", one, "r", uuid.New())
			}},
			{"unknown type", func() (*CashMovement, error) {
				return NewCashMovement(uuid.New(), uuid.New(), MovementType("loan"), decimal.NewFromInt(1), "USD", one, "r", uuid.New())
			}},
			{"zero amount", func() (*CashMovement, error) {
				return NewCashMovement(uuid.New(), uuid.New(), MovementCashIn, decimal.Zero, "USD", one, "r", uuid.New())
			}},
			{"empty currency", func() (*CashMovement, error) {
				return NewCashMovement(uuid.New(), uuid.New(), MovementCashIn, decimal.NewFromInt(1), "", one, "r", uuid.New())
			}},
			{"zero rate", func() (*CashMovement, error) {
				return NewCashMovement(uuid.New(), uuid.New(), MovementCashIn, decimal.NewFromInt(1), "USD", decimal.Zero, "r", uuid.New())
			}},
			{"empty reason", func() (*CashMovement, error) {
				return NewCashMovement(uuid.New(), uuid.New(), MovementCashIn, decimal.NewFromInt(1), "USD", one, "", uuid.New())
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

func TestMovementType_Sign(t *testing.T) {
	one := decimal.NewFromInt(1)
	assert.True(t, MovementCashIn.Sign().Equal(one))
	assert.True(t, MovementCashOut.Sign().Equal(one.Neg()))
	assert.True(t, MovementPettyCash.Sign().Equal(one.Neg()))
	assert.True(t, MovementBankDeposit.Sign().Equal(one.Neg()))
}

func TestMovementType_IsValid(t *testing.T) {
	assert.True(t, MovementType("bank_deposit").IsValid())
	assert.False(t, MovementType("banking").IsValid())
}

func TestCashMovement_Approve(t *testing.T) {
	m, err := NewCashMovement(uuid.New(), uuid.New(), MovementBankDeposit, decimal.NewFromInt(1000), "USD", decimal.NewFromInt(1), "bank run", uuid.New())
	require.NoError(t, err)

	approver := uuid.New()
	require.NoError(t, m.Approve(approver))
	assert.True(t, m.Approved)
	require.NotNil(t, m.ApprovedBy)
	assert.Equal(t, approver, *m.ApprovedBy)
	firstApproval := *m.ApprovedAt

	// Idempotent: a second approval keeps the original approver.
	require.NoError(t, m.Approve(uuid.New()))
	assert.Equal(t, approver, *m.ApprovedBy)
	assert.Equal(t, firstApproval, *m.ApprovedAt)

	assert.True(t, shared.HasCode(m.Approve(uuid.Nil), shared.CodeValidation))
}

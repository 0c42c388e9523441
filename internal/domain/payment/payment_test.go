package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArgs() (uuid.UUID, string, Target, uuid.UUID, uuid.UUID, decimal.Decimal, string, decimal.Decimal, uuid.UUID) {
	return uuid.New(), "RCP2026-00001", SaleTarget(uuid.New()), uuid.New(), uuid.New(),
		decimal.NewFromInt(100), "USD", decimal.NewFromFloat(18.5), uuid.New()
}

func TestNewPayment(t *testing.T) {
	t.Run("computes base amount from exchange rate snapshot", func(t *testing.T) {
		tenant, rcp, target, branch, method, amount, ccy, rate, by := validArgs()
		p, err := NewPayment(tenant, rcp, target, branch, method, amount, ccy, rate, by)
		require.NoError(t, err)

		assert.True(t, p.BaseAmount.Equal(decimal.NewFromInt(1850)), "base=%s", p.BaseAmount)
		assert.Equal(t, TargetSale, p.Target.Type)
		require.NotNil(t, p.CreatedBy)
		assert.Equal(t, by, *p.CreatedBy)
		assert.Equal(t, "100.00 USD", p.Tendered().String())
	})

	t.Run("rounds base amount to cents", func(t *testing.T) {
		tenant, rcp, target, branch, method, _, _, _, by := validArgs()
		p, err := NewPayment(tenant, rcp, target, branch, method,
			decimal.NewFromFloat(33.33), "EUR", decimal.NewFromFloat(1.2345), by)
		require.NoError(t, err)
		assert.True(t, p.BaseAmount.Equal(decimal.NewFromFloat(41.15)), "base=%s", p.BaseAmount)
	})

	t.Run("validation failures", func(t *testing.T) {
		tenant, rcp, target, branch, method, amount, ccy, rate, by := validArgs()

		tests := []struct {
			name string
			fn   func() (*Payment, error)
		}{
			{"empty receipt", func() (*Payment, error) {
				return NewPayment(tenant, "", target, branch, method, amount, ccy, rate, by)
			}},
			{"nil target id", func() (*Payment, error) {
				return NewPayment(tenant, rcp, Target{Type: TargetSale}, branch, method, amount, ccy, rate, by)
			}},
			{"bad target type", func() (*Payment, error) {
				return NewPayment(tenant, rcp, Target{Type: "refund", ID: uuid.New()}, branch, method, amount, ccy, rate, by)
			}},
			{"zero amount", func() (*Payment, error) {
				return NewPayment(tenant, rcp, target, branch, method, decimal.Zero, ccy, rate, by)
			}},
			{"empty currency", func() (*Payment, error) {
				return NewPayment(tenant, rcp, target, branch, method, amount, "", rate, by)
			}},
			{"zero rate", func() (*Payment, error) {
				return NewPayment(tenant, rcp, target, branch, method, amount, ccy, decimal.Zero, by)
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

func TestTarget(t *testing.T) {
	saleID := uuid.New()
	laybyID := uuid.New()

	assert.Equal(t, Target{Type: TargetSale, ID: saleID}, SaleTarget(saleID))
	assert.Equal(t, Target{Type: TargetLayby, ID: laybyID}, LaybyTarget(laybyID))
	assert.False(t, TargetType("invoice").IsValid())
}

func TestPayment_AttachShift(t *testing.T) {
	tenant, rcp, target, branch, method, amount, ccy, rate, by := validArgs()
	p, err := NewPayment(tenant, rcp, target, branch, method, amount, ccy, rate, by)
	require.NoError(t, err)

	p.AttachShift(uuid.Nil)
	assert.Nil(t, p.ShiftID)

	shiftID := uuid.New()
	p.AttachShift(shiftID)
	require.NotNil(t, p.ShiftID)
	assert.Equal(t, shiftID, *p.ShiftID)
}

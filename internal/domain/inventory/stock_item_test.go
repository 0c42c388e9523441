package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, qty int64) *StockItem {
	item, err := NewStockItem(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(qty))
	require.NoError(t, err)
	return item
}

func TestNewStockItem(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		item := newTestItem(t, 10)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 1, item.Version)
	})

	t.Run("rejects nil branch", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), uuid.Nil, uuid.New(), decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(-1))
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestStockItem_Deduct(t *testing.T) {
	t.Run("decrements quantity", func(t *testing.T) {
		item := newTestItem(t, 10)
		require.NoError(t, item.Deduct(decimal.NewFromInt(4)))
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, 2, item.Version)
	})

	t.Run("insufficient stock leaves quantity untouched", func(t *testing.T) {
		item := newTestItem(t, 3)
		err := item.Deduct(decimal.NewFromInt(5))
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeInsufficientStock))
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("can deduct to exactly zero", func(t *testing.T) {
		item := newTestItem(t, 5)
		require.NoError(t, item.Deduct(decimal.NewFromInt(5)))
		assert.True(t, item.Quantity.IsZero())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item := newTestItem(t, 5)
		err := item.Deduct(decimal.Zero)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestStockItem_Reserve(t *testing.T) {
	item := newTestItem(t, 8)
	require.NoError(t, item.Reserve(decimal.NewFromInt(3)))
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(5)))

	err := item.Reserve(decimal.NewFromInt(6))
	assert.True(t, shared.HasCode(err, shared.CodeInsufficientStock))
}

func TestStockItem_Return(t *testing.T) {
	item := newTestItem(t, 2)
	require.NoError(t, item.Return(decimal.NewFromInt(3)))
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(5)))

	err := item.Return(decimal.NewFromInt(-1))
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func TestStockItem_Adjust(t *testing.T) {
	item := newTestItem(t, 10)
	require.NoError(t, item.Adjust(decimal.NewFromInt(7), "stock count"))
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(7)))

	assert.True(t, shared.HasCode(item.Adjust(decimal.NewFromInt(1), ""), shared.CodeValidation))
	assert.True(t, shared.HasCode(item.Adjust(decimal.NewFromInt(-1), "x"), shared.CodeValidation))
}

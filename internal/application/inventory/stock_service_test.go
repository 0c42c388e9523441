package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/testutil"
)

func newStockFixture() (*StockService, *testutil.Store, *testutil.Reference) {
	store := testutil.NewStore()
	ref := testutil.NewReference()
	svc := NewStockService(testutil.NewScope(store), ref, zap.NewNop())
	return svc, store, ref
}

func TestStockService_Create(t *testing.T) {
	t.Run("opens a stock row", func(t *testing.T) {
		svc, store, ref := newStockFixture()
		productID := ref.AddProduct("Widget", decimal.NewFromInt(10))

		item, err := svc.Create(context.Background(), ref.TenantID, CreateStockInput{
			BranchID:  ref.BranchID,
			ProductID: productID,
			Quantity:  decimal.NewFromInt(50),
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(50).Equal(item.Quantity))
		assert.True(t, decimal.NewFromInt(50).Equal(store.StockQty(ref.TenantID, ref.BranchID, productID)))
	})

	t.Run("rejects a second row for the same branch and product", func(t *testing.T) {
		svc, _, ref := newStockFixture()
		productID := ref.AddProduct("Widget", decimal.NewFromInt(10))

		_, err := svc.Create(context.Background(), ref.TenantID, CreateStockInput{
			BranchID: ref.BranchID, ProductID: productID, Quantity: decimal.NewFromInt(5),
		})
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), ref.TenantID, CreateStockInput{
			BranchID: ref.BranchID, ProductID: productID, Quantity: decimal.NewFromInt(5),
		})
		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		svc, _, ref := newStockFixture()

		_, err := svc.Create(context.Background(), ref.TenantID, CreateStockInput{
			BranchID:  ref.BranchID,
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(5),
		})
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})
}

func TestStockService_Adjust(t *testing.T) {
	t.Run("sets the counted quantity", func(t *testing.T) {
		svc, store, ref := newStockFixture()
		productID := ref.AddProduct("Widget", decimal.NewFromInt(10))
		store.SeedStock(ref.TenantID, ref.BranchID, productID, decimal.NewFromInt(40))

		item, err := svc.Adjust(context.Background(), ref.TenantID, ref.BranchID, productID, AdjustStockInput{
			ActualQuantity: decimal.NewFromInt(37),
			Reason:         "cycle count",
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(37).Equal(item.Quantity))
		assert.Equal(t, 2, item.Version)
	})

	t.Run("requires a reason", func(t *testing.T) {
		svc, store, ref := newStockFixture()
		productID := ref.AddProduct("Widget", decimal.NewFromInt(10))
		store.SeedStock(ref.TenantID, ref.BranchID, productID, decimal.NewFromInt(40))

		_, err := svc.Adjust(context.Background(), ref.TenantID, ref.BranchID, productID, AdjustStockInput{
			ActualQuantity: decimal.NewFromInt(37),
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("missing row is a distinct error from zero stock", func(t *testing.T) {
		svc, _, ref := newStockFixture()
		productID := ref.AddProduct("Widget", decimal.NewFromInt(10))

		_, err := svc.Adjust(context.Background(), ref.TenantID, ref.BranchID, productID, AdjustStockInput{
			ActualQuantity: decimal.NewFromInt(5),
			Reason:         "cycle count",
		})
		assert.True(t, shared.HasCode(err, shared.CodeNoInventoryRecord))
	})
}

func TestStockService_ListForBranch(t *testing.T) {
	svc, store, ref := newStockFixture()
	first := ref.AddProduct("Widget", decimal.NewFromInt(10))
	second := ref.AddProduct("Gadget", decimal.NewFromInt(20))
	store.SeedStock(ref.TenantID, ref.BranchID, first, decimal.NewFromInt(3))
	store.SeedStock(ref.TenantID, ref.BranchID, second, decimal.NewFromInt(7))

	items, total, err := svc.ListForBranch(context.Background(), ref.TenantID, ref.BranchID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

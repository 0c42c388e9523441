package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
	"github.com/retailpos/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// saleAPI wires a SaleHandler onto a test engine backed by in-memory
// repositories. Requests carry the fixture tenant unless overridden.
type saleAPI struct {
	engine *gin.Engine
	store  *testutil.Store
	ref    *testutil.Reference
	userID uuid.UUID
}

func newSaleAPI() *saleAPI {
	store := testutil.NewStore()
	ref := testutil.NewReference()
	userID := uuid.New()
	service := salesapp.NewSaleService(testutil.NewScope(store), ref, ref, zap.NewNop())

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		setJWTContext(c, ref.TenantID, userID)
	})
	api := engine.Group("/api/v1")
	NewSaleHandler(service).RegisterRoutes(api)

	return &saleAPI{engine: engine, store: store, ref: ref, userID: userID}
}

func (a *saleAPI) seedProduct(price float64, stockQty int64) uuid.UUID {
	id := a.ref.AddProduct(fmt.Sprintf("P-%s", uuid.New().String()[:8]), decimal.NewFromFloat(price))
	a.store.SeedStock(a.ref.TenantID, a.ref.BranchID, id, decimal.NewFromInt(stockQty))
	return id
}

func (a *saleAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSaleHandler_CreateTillSale(t *testing.T) {
	api := newSaleAPI()
	productID := api.seedProduct(100, 10)

	body := gin.H{
		"branch_id":   api.ref.BranchID,
		"customer_id": api.ref.CustomerID,
		"lines": []gin.H{
			{"product_id": productID, "quantity": "2"},
		},
		"payment": gin.H{
			"payment_method_id": api.ref.CashMethodID,
			"amount":            "230",
			"currency_code":     "USD",
		},
	}

	w := api.do("POST", "/api/v1/sales/till", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var sale SaleResponse
	require.NoError(t, json.Unmarshal(data, &sale))
	assert.Equal(t, "completed", sale.Status)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(230)), "total %s", sale.Total)

	// Stock is deducted in the same transaction.
	qty := api.store.StockQty(api.ref.TenantID, api.ref.BranchID, productID)
	assert.True(t, qty.Equal(decimal.NewFromInt(8)), "stock %s", qty)
}

func TestSaleHandler_CreateTillSale_InsufficientStock(t *testing.T) {
	api := newSaleAPI()
	productID := api.seedProduct(100, 1)

	body := gin.H{
		"branch_id":   api.ref.BranchID,
		"customer_id": api.ref.CustomerID,
		"lines": []gin.H{
			{"product_id": productID, "quantity": "5"},
		},
		"payment": gin.H{
			"payment_method_id": api.ref.CashMethodID,
			"amount":            "575",
			"currency_code":     "USD",
		},
	}

	w := api.do("POST", "/api/v1/sales/till", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
}

func TestSaleHandler_Create_InvalidBody(t *testing.T) {
	api := newSaleAPI()

	w := api.do("POST", "/api/v1/sales", gin.H{"branch_id": api.ref.BranchID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleHandler_GetByID_NotFound(t *testing.T) {
	api := newSaleAPI()

	w := api.do("GET", "/api/v1/sales/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestSaleHandler_GetByID_InvalidID(t *testing.T) {
	api := newSaleAPI()

	w := api.do("GET", "/api/v1/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleHandler_Unauthenticated(t *testing.T) {
	store := testutil.NewStore()
	ref := testutil.NewReference()
	service := salesapp.NewSaleService(testutil.NewScope(store), ref, ref, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewSaleHandler(service).RegisterRoutes(api)

	req := httptest.NewRequest("GET", "/api/v1/sales", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaleHandler_ListWithStatusFilter(t *testing.T) {
	api := newSaleAPI()
	productID := api.seedProduct(50, 20)

	create := gin.H{
		"branch_id":   api.ref.BranchID,
		"customer_id": api.ref.CustomerID,
		"lines": []gin.H{
			{"product_id": productID, "quantity": "1"},
		},
	}
	for i := 0; i < 3; i++ {
		w := api.do("POST", "/api/v1/sales", create)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := api.do("GET", "/api/v1/sales?status=draft", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)

	w = api.do("GET", "/api/v1/sales?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(0), resp.Meta.Total)
}

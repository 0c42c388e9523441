package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("", h.Create)
		stock.GET("/branches/:branchId", h.ListForBranch)
		stock.GET("/branches/:branchId/products/:productId", h.Get)
		stock.POST("/branches/:branchId/products/:productId/adjust", h.Adjust)
	}
}

// Create opens a stock row for a branch-product pair.
func (h *StockHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var in inventoryapp.CreateStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.stockService.Create(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toStockItemResponse(item))
}

// Get loads the stock row for a branch-product pair.
func (h *StockHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	branchID, err := pathID(c, "branchId")
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	item, err := h.stockService.Get(c.Request.Context(), tenantID, branchID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toStockItemResponse(item))
}

// ListForBranch pages through a branch's stock rows.
func (h *StockHandler) ListForBranch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	branchID, err := pathID(c, "branchId")
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.stockService.ListForBranch(c.Request.Context(), tenantID, branchID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, toStockItemResponses(items), total, filter.Page, filter.PageSize)
}

// Adjust sets a stock row to the counted quantity.
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	branchID, err := pathID(c, "branchId")
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var in inventoryapp.AdjustStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.stockService.Adjust(c.Request.Context(), tenantID, branchID, productID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toStockItemResponse(item))
}

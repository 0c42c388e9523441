package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/retailpos/backend/internal/application/sales"
)

// SaleHandler handles sale API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Create)
		sales.POST("/till", h.CreateTillSale)
		sales.GET("", h.List)
		sales.GET("/:id", h.GetByID)
		sales.PUT("/:id", h.Update)
		sales.POST("/:id/confirm", h.Confirm)
		sales.POST("/:id/payments", h.AddPayment)
		sales.POST("/:id/cancel", h.Cancel)
	}
}

// Create creates a draft credit sale.
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var in salesapp.CreateSaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), tenantID, userID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toSaleResponse(sale))
}

// CreateTillSale creates, confirms, pays and completes a sale in one call.
func (h *SaleHandler) CreateTillSale(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var in salesapp.TillSaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.CreateTillSale(c.Request.Context(), tenantID, userID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toSaleResponse(sale))
}

// GetByID loads one sale.
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	saleID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.Get(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toSaleResponse(sale))
}

// List pages through sales with optional status/branch/customer filters.
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if branchID, err := uuid.Parse(c.Query("branch_id")); err == nil {
		filter.Filters["branch_id"] = branchID
	}
	if customerID, err := uuid.Parse(c.Query("customer_id")); err == nil {
		filter.Filters["customer_id"] = customerID
	}

	page, err := h.saleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, toSaleResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Update replaces the lines of a draft sale.
func (h *SaleHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	saleID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var in salesapp.UpdateSaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), tenantID, saleID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toSaleResponse(sale))
}

// Confirm deducts stock and moves the sale to confirmed.
func (h *SaleHandler) Confirm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	saleID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.Confirm(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toSaleResponse(sale))
}

// AddPayment records one tender against a confirmed sale.
func (h *SaleHandler) AddPayment(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	saleID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var in salesapp.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	p, err := h.saleService.AddPayment(c.Request.Context(), tenantID, userID, saleID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(p))
}

// Cancel cancels a draft sale.
func (h *SaleHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	saleID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.Cancel(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toSaleResponse(sale))
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/shopspring/decimal"
)

// LaybyHandler handles layby API endpoints
type LaybyHandler struct {
	BaseHandler
	laybyService *salesapp.LaybyService
}

// NewLaybyHandler creates a new LaybyHandler
func NewLaybyHandler(laybyService *salesapp.LaybyService) *LaybyHandler {
	return &LaybyHandler{laybyService: laybyService}
}

// RegisterRoutes registers all layby routes
func (h *LaybyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	laybys := rg.Group("/laybys")
	{
		laybys.POST("", h.Create)
		laybys.GET("", h.List)
		laybys.GET("/:id", h.GetByID)
		laybys.PUT("/:id", h.Update)
		laybys.POST("/:id/activate", h.Activate)
		laybys.POST("/:id/payments", h.AddPayment)
		laybys.POST("/:id/collect", h.Collect)
		laybys.POST("/:id/cancel", h.Cancel)
	}
}

// CancelLaybyResponse carries the cancelled layby and the refund owed.
type CancelLaybyResponse struct {
	Layby  LaybyResponse   `json:"layby"`
	Refund decimal.Decimal `json:"refund"`
}

// Create creates a draft layby.
func (h *LaybyHandler) Create(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var in salesapp.CreateLaybyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	layby, err := h.laybyService.Create(c.Request.Context(), tenantID, userID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toLaybyResponse(layby))
}

// GetByID loads one layby.
func (h *LaybyHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	laybyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid layby ID format")
		return
	}

	layby, err := h.laybyService.Get(c.Request.Context(), tenantID, laybyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLaybyResponse(layby))
}

// List pages through laybys.
func (h *LaybyHandler) List(c *gin.Context) {
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

	page, err := h.laybyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, toLaybyResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Update replaces the lines of a draft, unpaid layby.
func (h *LaybyHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	laybyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid layby ID format")
		return
	}

	var in salesapp.UpdateLaybyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	layby, err := h.laybyService.Update(c.Request.Context(), tenantID, laybyID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLaybyResponse(layby))
}

// Activate reserves stock for every line and opens the layby for payments.
func (h *LaybyHandler) Activate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	laybyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid layby ID format")
		return
	}

	layby, err := h.laybyService.Activate(c.Request.Context(), tenantID, laybyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLaybyResponse(layby))
}

// AddPayment records one instalment. The first payment must meet the
// deposit requirement.
func (h *LaybyHandler) AddPayment(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	laybyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid layby ID format")
		return
	}

	var in salesapp.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	p, err := h.laybyService.AddPayment(c.Request.Context(), tenantID, userID, laybyID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(p))
}

// Collect hands the goods over once the layby is fully paid.
func (h *LaybyHandler) Collect(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	laybyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid layby ID format")
		return
	}

	layby, err := h.laybyService.Collect(c.Request.Context(), tenantID, laybyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLaybyResponse(layby))
}

// Cancel cancels a layby, returns reserved stock and reports the refund.
func (h *LaybyHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	laybyID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid layby ID format")
		return
	}

	result, err := h.laybyService.Cancel(c.Request.Context(), tenantID, laybyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, CancelLaybyResponse{
		Layby:  toLaybyResponse(result.Layby),
		Refund: result.Refund,
	})
}

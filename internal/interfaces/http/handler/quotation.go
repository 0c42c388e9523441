package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/sales"
)

// QuotationHandler handles quotation API endpoints
type QuotationHandler struct {
	BaseHandler
	quotationService *salesapp.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationService *salesapp.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// RegisterRoutes registers all quotation routes
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotations := rg.Group("/quotations")
	{
		quotations.POST("", h.Create)
		quotations.GET("", h.List)
		quotations.GET("/:id", h.GetByID)
		quotations.PUT("/:id", h.Update)
		quotations.POST("/:id/send", h.Send)
		quotations.POST("/:id/reject", h.Reject)
		quotations.POST("/:id/convert", h.ConvertToSale)
		quotations.POST("/:id/recreate", h.Recreate)
	}
}

// Create creates a draft quotation.
func (h *QuotationHandler) Create(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var in salesapp.CreateQuotationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quotation, err := h.quotationService.Create(c.Request.Context(), tenantID, userID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toQuotationResponse(quotation))
}

// GetByID loads one quotation. Reading a sent quotation past its expiry
// date flips it to expired.
func (h *QuotationHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	quotationID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	quotation, err := h.quotationService.Get(c.Request.Context(), tenantID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toQuotationResponse(quotation))
}

// List pages through quotations.
func (h *QuotationHandler) List(c *gin.Context) {
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

	page, err := h.quotationService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, toQuotationResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Update replaces the lines of a draft quotation.
func (h *QuotationHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	quotationID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	var in salesapp.UpdateSaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quotation, err := h.quotationService.Update(c.Request.Context(), tenantID, quotationID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toQuotationResponse(quotation))
}

// Send marks a draft quotation as sent to the customer.
func (h *QuotationHandler) Send(c *gin.Context) {
	h.transition(c, h.quotationService.Send)
}

// Reject marks a sent quotation as rejected.
func (h *QuotationHandler) Reject(c *gin.Context) {
	h.transition(c, h.quotationService.Reject)
}

// ConvertToSale converts a sent, unexpired quotation into a draft sale at
// the quoted prices.
func (h *QuotationHandler) ConvertToSale(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	quotationID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	sale, err := h.quotationService.ConvertToSale(c.Request.Context(), tenantID, userID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toSaleResponse(sale))
}

// Recreate builds a fresh draft quotation from an expired one at current
// catalog prices.
func (h *QuotationHandler) Recreate(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	quotationID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	quotation, err := h.quotationService.Recreate(c.Request.Context(), tenantID, userID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toQuotationResponse(quotation))
}

type quotationTransition func(ctx context.Context, tenantID, quotationID uuid.UUID) (*sales.Quotation, error)

func (h *QuotationHandler) transition(c *gin.Context, fn quotationTransition) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	quotationID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	quotation, err := fn(c.Request.Context(), tenantID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toQuotationResponse(quotation))
}

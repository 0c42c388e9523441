package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tillapp "github.com/retailpos/backend/internal/application/till"
	"github.com/retailpos/backend/internal/domain/dayend"
)

// DayEndHandler handles day-end reconciliation API endpoints
type DayEndHandler struct {
	BaseHandler
	dayEndService *tillapp.DayEndService
}

// NewDayEndHandler creates a new DayEndHandler
func NewDayEndHandler(dayEndService *tillapp.DayEndService) *DayEndHandler {
	return &DayEndHandler{dayEndService: dayEndService}
}

// RegisterRoutes registers all day-end routes
func (h *DayEndHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dayEnds := rg.Group("/day-ends")
	{
		dayEnds.GET("", h.List)
		dayEnds.GET("/:id", h.GetByID)
		dayEnds.GET("/branches/:branchId", h.GetByBranchAndDate)
		dayEnds.PUT("/:id/reconciliation", h.UpdateReconciliation)
		dayEnds.POST("/:id/review", h.Review)
		dayEnds.POST("/:id/approve", h.Approve)
		dayEnds.POST("/:id/reopen", h.Reopen)
	}
}

// GetByID loads one day-end record.
func (h *DayEndHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	dayEndID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid day-end ID format")
		return
	}

	d, err := h.dayEndService.Get(c.Request.Context(), tenantID, dayEndID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toDayEndResponse(d))
}

// GetByBranchAndDate loads the day-end for a branch and business date.
// The date query parameter uses the 2006-01-02 layout and defaults to
// today.
func (h *DayEndHandler) GetByBranchAndDate(c *gin.Context) {
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

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
	}

	d, err := h.dayEndService.GetByBranchAndDate(c.Request.Context(), tenantID, branchID, date)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toDayEndResponse(d))
}

// List pages through day-end records.
func (h *DayEndHandler) List(c *gin.Context) {
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

	page, err := h.dayEndService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, toDayEndResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// UpdateReconciliation records counted amounts per payment method on an
// open or reviewed day-end.
func (h *DayEndHandler) UpdateReconciliation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	dayEndID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid day-end ID format")
		return
	}

	var in tillapp.ReconciliationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	d, err := h.dayEndService.UpdateReconciliation(c.Request.Context(), tenantID, dayEndID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toDayEndResponse(d))
}

// Review marks an open day-end as reviewed by the caller.
func (h *DayEndHandler) Review(c *gin.Context) {
	h.transition(c, h.dayEndService.Review)
}

// Approve approves a reviewed day-end and starts the edit window.
func (h *DayEndHandler) Approve(c *gin.Context) {
	h.transition(c, h.dayEndService.Approve)
}

// Reopen reopens an approved day-end while its edit window is still open.
func (h *DayEndHandler) Reopen(c *gin.Context) {
	h.transition(c, h.dayEndService.Reopen)
}

type dayEndTransition func(ctx context.Context, tenantID, actorID, dayEndID uuid.UUID) (*dayend.DayEnd, error)

func (h *DayEndHandler) transition(c *gin.Context, fn dayEndTransition) {
	tenantID, actorID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	dayEndID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid day-end ID format")
		return
	}

	d, err := fn(c.Request.Context(), tenantID, actorID, dayEndID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toDayEndResponse(d))
}

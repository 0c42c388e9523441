package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tillapp "github.com/retailpos/backend/internal/application/till"
)

// ShiftHandler handles till shift API endpoints
type ShiftHandler struct {
	BaseHandler
	shiftService *tillapp.ShiftService
}

// NewShiftHandler creates a new ShiftHandler
func NewShiftHandler(shiftService *tillapp.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// RegisterRoutes registers all shift routes
func (h *ShiftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shifts := rg.Group("/shifts")
	{
		shifts.POST("", h.Open)
		shifts.GET("", h.List)
		shifts.GET("/:id", h.GetByID)
		shifts.POST("/:id/movements", h.AddCashMovement)
		shifts.POST("/:id/close", h.Close)
	}
	rg.POST("/cash-movements/:id/approve", h.ApproveCashMovement)
}

// CloseShiftResponse carries the closed shift and the day-end record it
// rolled into.
type CloseShiftResponse struct {
	Shift  ShiftResponse  `json:"shift"`
	DayEnd DayEndResponse `json:"day_end"`
}

// Open opens a shift on a till for the calling cashier.
func (h *ShiftHandler) Open(c *gin.Context) {
	tenantID, cashierID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var in tillapp.OpenShiftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shift, err := h.shiftService.Open(c.Request.Context(), tenantID, cashierID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toShiftResponse(shift))
}

// GetByID loads one shift with its cash movements.
func (h *ShiftHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	shiftID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shift ID format")
		return
	}

	shift, err := h.shiftService.Get(c.Request.Context(), tenantID, shiftID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toShiftResponse(shift))
}

// List pages through shifts with optional status/branch/cashier filters.
func (h *ShiftHandler) List(c *gin.Context) {
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
	if cashierID, err := uuid.Parse(c.Query("cashier_id")); err == nil {
		filter.Filters["cashier_id"] = cashierID
	}

	page, err := h.shiftService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, toShiftResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// AddCashMovement records a cash drop or payout against an open shift.
func (h *ShiftHandler) AddCashMovement(c *gin.Context) {
	tenantID, actorID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	shiftID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shift ID format")
		return
	}

	var in tillapp.MovementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.shiftService.AddCashMovement(c.Request.Context(), tenantID, actorID, shiftID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toCashMovementResponse(movement))
}

// ApproveCashMovement approves a pending cash movement.
func (h *ShiftHandler) ApproveCashMovement(c *gin.Context) {
	tenantID, approverID, err := identity(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	movementID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	movement, err := h.shiftService.ApproveCashMovement(c.Request.Context(), tenantID, approverID, movementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCashMovementResponse(movement))
}

// Close closes a shift against the counted cash and rolls it into the
// branch day-end for its business date.
func (h *ShiftHandler) Close(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity missing")
		return
	}
	shiftID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid shift ID format")
		return
	}

	var in tillapp.CloseShiftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.shiftService.Close(c.Request.Context(), tenantID, shiftID, in)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, CloseShiftResponse{
		Shift:  toShiftResponse(result.Shift),
		DayEnd: toDayEndResponse(result.DayEnd),
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	appworkshop "github.com/taller/backend/internal/application/workshop"
	"github.com/taller/backend/internal/interfaces/http/middleware"
)

// RepairOrderHandler handles repair order endpoints
type RepairOrderHandler struct {
	BaseHandler
	service *appworkshop.RepairOrderService
}

// NewRepairOrderHandler creates a new RepairOrderHandler
func NewRepairOrderHandler(service *appworkshop.RepairOrderService) *RepairOrderHandler {
	return &RepairOrderHandler{service: service}
}

// Create handles POST /repair-orders
func (h *RepairOrderHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appworkshop.CreateRepairOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Diagnose handles POST /repair-orders/:id/diagnosis
func (h *RepairOrderHandler) Diagnose(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid repair order ID")
		return
	}

	var req appworkshop.DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.Diagnose(c.Request.Context(), orderID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Transition handles POST /repair-orders/:id/transition
func (h *RepairOrderHandler) Transition(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid repair order ID")
		return
	}

	var req appworkshop.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.Transition(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RecordPayment handles POST /repair-orders/:id/payments
func (h *RepairOrderHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid repair order ID")
		return
	}

	var req appworkshop.OrderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.RecordPayment(c.Request.Context(), orderID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Get handles GET /repair-orders/:id
func (h *RepairOrderHandler) Get(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid repair order ID")
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /repair-orders
func (h *RepairOrderHandler) List(c *gin.Context) {
	var filter appworkshop.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

package handler

import (
	"github.com/gin-gonic/gin"
	appinventory "github.com/taller/backend/internal/application/inventory"
	"github.com/taller/backend/internal/interfaces/http/middleware"
)

// StockHandler handles manual stock adjustment and movement history endpoints
type StockHandler struct {
	BaseHandler
	service *appinventory.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *appinventory.StockService) *StockHandler {
	return &StockHandler{service: service}
}

// Adjust handles POST /stock/adjustments
func (h *StockHandler) Adjust(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appinventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.Adjust(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BulkAdjust handles POST /stock/adjustments/bulk
func (h *StockHandler) BulkAdjust(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appinventory.BulkAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	results, err := h.service.BulkAdjust(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// History handles GET /products/:id/movements
func (h *StockHandler) History(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var filter appinventory.MovementListFilter
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

	movements, total, err := h.service.History(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Audit handles POST /products/:id/stock-audit
func (h *StockHandler) Audit(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.service.Audit(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"consistent": true})
}

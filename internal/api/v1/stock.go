package v1

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/service"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(service service.StockService) *StockHandler {
	return &StockHandler{service: service}
}

// AdjustStock handles POST /v1/stock/adjust
func (h *StockHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	mov, err := h.service.AdjustStock(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

// TransferStock handles POST /v1/stock/transfer
func (h *StockHandler) TransferStock(c *gin.Context) {
	var req dto.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	movements, err := h.service.TransferStock(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, movements)
}

// SetMinQuantity handles PUT /v1/stock/min-quantity
func (h *StockHandler) SetMinQuantity(c *gin.Context) {
	var req dto.SetMinQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	if err := h.service.SetMinQuantity(c.Request.Context(), &req); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetLevel handles GET /v1/stock/levels/:location_id/:product_id
func (h *StockHandler) GetLevel(c *gin.Context) {
	resp, err := h.service.GetLevel(c.Request.Context(), c.Param("location_id"), c.Param("product_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListLevelsByProduct handles GET /v1/stock/products/:product_id/levels
func (h *StockHandler) ListLevelsByProduct(c *gin.Context) {
	resp, err := h.service.ListLevelsByProduct(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements handles GET /v1/stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter types.StockMovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.ListMovements(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetKardex handles GET /v1/stock/kardex/:location_id/:product_id
func (h *StockHandler) GetKardex(c *gin.Context) {
	var filter types.QueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.GetKardex(c.Request.Context(), c.Param("location_id"), c.Param("product_id"), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package v1

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/service"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

type CashRegisterHandler struct {
	service service.CashRegisterService
}

func NewCashRegisterHandler(service service.CashRegisterService) *CashRegisterHandler {
	return &CashRegisterHandler{service: service}
}

// OpenRegister handles POST /v1/cash-registers
func (h *CashRegisterHandler) OpenRegister(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.OpenRegister(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordMovement handles POST /v1/cash-registers/:id/movements
func (h *CashRegisterHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordCashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	req.RegisterID = c.Param("id")
	m, err := h.service.RecordMovement(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// CloseRegister handles POST /v1/cash-registers/:id/close
func (h *CashRegisterHandler) CloseRegister(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	req.RegisterID = c.Param("id")
	resp, err := h.service.CloseRegister(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRegister handles GET /v1/cash-registers/:id
func (h *CashRegisterHandler) GetRegister(c *gin.Context) {
	resp, err := h.service.GetRegister(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSnapshot handles GET /v1/cash-registers/:id/snapshot
func (h *CashRegisterHandler) GetSnapshot(c *gin.Context) {
	resp, err := h.service.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCurrentRegister handles GET /v1/locations/:location_id/cash-register
func (h *CashRegisterHandler) GetCurrentRegister(c *gin.Context) {
	resp, err := h.service.GetCurrentRegister(c.Request.Context(), c.Param("location_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListRegisters handles GET /v1/cash-registers
func (h *CashRegisterHandler) ListRegisters(c *gin.Context) {
	var filter types.QueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.ListRegisters(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

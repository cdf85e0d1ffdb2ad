package v1

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/service"
	"github.com/gin-gonic/gin"
)

type POSHandler struct {
	service service.POSService
}

func NewPOSHandler(service service.POSService) *POSHandler {
	return &POSHandler{service: service}
}

// ProcessSale handles POST /v1/pos/sales
func (h *POSHandler) ProcessSale(c *gin.Context) {
	var req dto.ProcessSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.ProcessSale(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

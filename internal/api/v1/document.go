package v1

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/service"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	service service.DocumentService
}

func NewDocumentHandler(service service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// CreateDocument handles POST /v1/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.CreateDocument(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetDocument handles GET /v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	resp, err := h.service.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateDocument handles PUT /v1/documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.UpdateDraft(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmDocument handles POST /v1/documents/:id/confirm
func (h *DocumentHandler) ConfirmDocument(c *gin.Context) {
	resp, err := h.service.ConfirmDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VoidDocument handles POST /v1/documents/:id/void
func (h *DocumentHandler) VoidDocument(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	resp, err := h.service.VoidDocument(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListDocuments handles GET /v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	var filter types.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	resp, err := h.service.ListDocuments(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

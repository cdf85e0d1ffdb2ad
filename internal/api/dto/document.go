package dto

import (
	"time"

	"github.com/facturio/facturio/internal/domain/document"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateDocumentRequest struct {
	DocumentType   types.DocumentType       `json:"document_type" validate:"required"`
	CounterpartyID string                   `json:"counterparty_id" validate:"required"`
	LocationID     string                   `json:"location_id" validate:"required"`
	IssueDate      *time.Time               `json:"issue_date,omitempty"`
	DueDate        *time.Time               `json:"due_date,omitempty"`
	Currency       string                   `json:"currency,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	LineItems      []CreateLineItemRequest  `json:"line_items" validate:"required,min=1,dive"`
}

type CreateLineItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

func (r *CreateDocumentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid document request").
			Mark(ierr.ErrValidation)
	}
	if !r.DocumentType.Validate() {
		return ierr.NewError("invalid document type").
			WithHint("Document type must be sale or purchase").
			Mark(ierr.ErrValidation)
	}
	for i, li := range r.LineItems {
		if !li.Quantity.IsPositive() {
			return ierr.NewError("line item quantity must be positive").
				WithReportableDetails(map[string]any{
					"index":    i,
					"quantity": li.Quantity.String(),
				}).
				Mark(ierr.ErrValidation)
		}
		if li.UnitPrice != nil && li.UnitPrice.IsNegative() {
			return ierr.NewError("line item unit price cannot be negative").
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// UpdateDocumentRequest replaces a draft document's mutable fields and lines.
type UpdateDocumentRequest struct {
	CounterpartyID *string                 `json:"counterparty_id,omitempty"`
	IssueDate      *time.Time              `json:"issue_date,omitempty"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	Notes          *string                 `json:"notes,omitempty"`
	LineItems      []CreateLineItemRequest `json:"line_items,omitempty" validate:"omitempty,min=1,dive"`
}

func (r *UpdateDocumentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid document update request").
			Mark(ierr.ErrValidation)
	}
	for i, li := range r.LineItems {
		if !li.Quantity.IsPositive() {
			return ierr.NewError("line item quantity must be positive").
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

type DocumentResponse struct {
	*document.Document
}

type ListDocumentsResponse struct {
	Items      []*DocumentResponse      `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

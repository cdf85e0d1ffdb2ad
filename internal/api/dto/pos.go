package dto

import (
	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

// ProcessSaleRequest drives the point-of-sale flow: one call creates the sale
// document, moves stock out, records payments and returns the change due.
type ProcessSaleRequest struct {
	LocationID     string               `json:"location_id" validate:"required"`
	CounterpartyID string               `json:"counterparty_id" validate:"required"`
	Items          []SaleItemRequest    `json:"items" validate:"required,min=1,dive"`
	Payments       []SalePaymentRequest `json:"payments" validate:"required,min=1,dive"`
	Notes          string               `json:"notes,omitempty"`
}

type SaleItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type SalePaymentRequest struct {
	Method    types.PaymentMethod `json:"method" validate:"required"`
	Amount    decimal.Decimal     `json:"amount" validate:"required"`
	Reference string              `json:"reference,omitempty"`
}

func (r *ProcessSaleRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid sale request").
			Mark(ierr.ErrValidation)
	}
	for i, item := range r.Items {
		if !item.Quantity.IsPositive() {
			return ierr.NewError("sale item quantity must be positive").
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return ierr.NewError("sale item unit price cannot be negative").
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
	}
	for i, p := range r.Payments {
		if !p.Amount.IsPositive() {
			return ierr.NewError("sale payment amount must be positive").
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
		if !p.Method.Validate() {
			return ierr.NewError("invalid payment method").
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

type ProcessSaleResponse struct {
	Document   *DocumentResponse  `json:"document"`
	Payments   []*payment.Payment `json:"payments"`
	Change     decimal.Decimal    `json:"change"`
	RegisterID string             `json:"register_id"`
}

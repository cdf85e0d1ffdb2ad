package dto

import (
	"time"

	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

type AddPaymentRequest struct {
	DocumentID  string              `json:"document_id" validate:"required"`
	Amount      decimal.Decimal     `json:"amount" validate:"required"`
	Method      types.PaymentMethod `json:"method" validate:"required"`
	Reference   string              `json:"reference,omitempty"`
	PaymentDate *time.Time          `json:"payment_date,omitempty"`
	Notes       string              `json:"notes,omitempty"`
}

func (r *AddPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid payment request").
			Mark(ierr.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithReportableDetails(map[string]any{"amount": r.Amount.String()}).
			Mark(ierr.ErrValidation)
	}
	if !r.Method.Validate() {
		return ierr.NewError("invalid payment method").
			WithHint("Payment method must be cash, transfer, card or other").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentResponse includes the document status after the payment was applied.
type PaymentResponse struct {
	*payment.Payment
	DocumentStatus types.DocumentStatus `json:"document_status"`
	PaidTotal      decimal.Decimal      `json:"paid_total"`
}

type ListPaymentsResponse struct {
	Items      []*payment.Payment       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

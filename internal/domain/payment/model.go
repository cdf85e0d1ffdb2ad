package payment

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is one append-only row of the payment ledger. Payments are never
// updated or deleted; the document status is recomputed from their sum.
type Payment struct {
	ID          string              `db:"id" json:"id"`
	DocumentID  string              `db:"document_id" json:"document_id"`
	Amount      decimal.Decimal     `db:"amount" json:"amount"`
	Method      types.PaymentMethod `db:"method" json:"method"`
	Reference   string              `db:"reference" json:"reference,omitempty"`
	PaymentDate time.Time           `db:"payment_date" json:"payment_date"`
	Notes       string              `db:"notes" json:"notes,omitempty"`
	types.BaseModel
}

func (p *Payment) Validate() error {
	if p.DocumentID == "" {
		return ierr.NewError("document_id is required").
			WithHint("Payments must reference a document").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amounts must be greater than zero").
			WithReportableDetails(map[string]any{"amount": p.Amount.String()}).
			Mark(ierr.ErrValidation)
	}
	if !p.Method.Validate() {
		return ierr.NewError("invalid payment method").
			WithHint("Payment method must be cash, transfer, card or other").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ComputeDocumentStatus derives the payment-driven document status from the
// cumulative paid amount. It is a pure function of (current, total, paid):
// paid when a positive paid amount covers the total, partial when anything
// was paid, otherwise the current status is kept. A zero-total document
// reaches paid with its first payment.
func ComputeDocumentStatus(current types.DocumentStatus, total, paid decimal.Decimal) types.DocumentStatus {
	if paid.GreaterThanOrEqual(total) && paid.IsPositive() {
		return types.DocumentStatusPaid
	}
	if paid.IsPositive() {
		return types.DocumentStatusPartial
	}
	return current
}

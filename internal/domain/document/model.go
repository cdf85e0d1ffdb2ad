package document

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Document is a commercial document (sales invoice or purchase bill)
// progressing through draft → open → partial/paid, with void as a terminal
// administrative state. Totals are derived from line items; status is
// derived from confirmation and payments, never set directly by callers.
type Document struct {
	ID             string               `db:"id" json:"id"`
	DocumentType   types.DocumentType   `db:"document_type" json:"document_type"`
	Source         types.DocumentSource `db:"source" json:"source"`
	Status         types.DocumentStatus `db:"status" json:"status"`
	Number         *string              `db:"number" json:"number"`
	CounterpartyID string               `db:"counterparty_id" json:"counterparty_id"`
	LocationID     string               `db:"location_id" json:"location_id"`
	IssueDate      time.Time            `db:"issue_date" json:"issue_date"`
	DueDate        *time.Time           `db:"due_date" json:"due_date,omitempty"`
	Currency       string               `db:"currency" json:"currency"`
	Notes          string               `db:"notes" json:"notes,omitempty"`
	Subtotal       decimal.Decimal      `db:"subtotal" json:"subtotal"`
	TaxesTotal     decimal.Decimal      `db:"taxes_total" json:"taxes_total"`
	TotalAmount    decimal.Decimal      `db:"total_amount" json:"total_amount"`
	VoidedAt       *time.Time           `db:"voided_at" json:"voided_at,omitempty"`
	LineItems      []*LineItem          `db:"-" json:"line_items,omitempty"`
	types.BaseModel
}

// LineItem is a single document line. Product name and SKU are snapshotted
// so later catalog changes do not rewrite history.
type LineItem struct {
	ID           string          `db:"id" json:"id"`
	DocumentID   string          `db:"document_id" json:"document_id"`
	ProductID    string          `db:"product_id" json:"product_id"`
	Name         string          `db:"name" json:"name"`
	SKU          string          `db:"sku" json:"sku"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineSubtotal decimal.Decimal `db:"line_subtotal" json:"line_subtotal"`
	LineTaxes    TaxLines        `db:"line_taxes" json:"line_taxes,omitempty"`
	LineTotal    decimal.Decimal `db:"line_total" json:"line_total"`
	types.BaseModel
}

// TaxLine is one applied tax on a line item
type TaxLine struct {
	TaxID     string          `json:"tax_id"`
	TaxName   string          `json:"tax_name"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// TaxLines is stored as a JSONB column
type TaxLines []TaxLine

func (t TaxLines) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *TaxLines) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return ierr.NewError("unsupported type for tax lines").Mark(ierr.ErrSystem)
	}
	return json.Unmarshal(b, t)
}

// TaxesAmount is the sum of the applied tax amounts
func (t TaxLines) TaxesAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t {
		total = total.Add(line.TaxAmount)
	}
	return total
}

// Validate checks structural line invariants
func (i *LineItem) Validate() error {
	if i.ProductID == "" {
		return ierr.NewError("line item product_id is required").
			WithHint("Each line item must reference a product").
			Mark(ierr.ErrValidation)
	}
	if i.Quantity.IsNegative() {
		return ierr.NewError("line item quantity must be non negative").
			WithHint("Line quantities cannot be negative").
			WithReportableDetails(map[string]any{"product_id": i.ProductID}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Compute derives line subtotal and total from quantity, unit price and the
// applied taxes, rounded to 2 decimals
func (i *LineItem) Compute() {
	i.LineSubtotal = types.RoundAmount(i.Quantity.Mul(i.UnitPrice))
	i.LineTotal = types.RoundAmount(i.LineSubtotal.Add(i.LineTaxes.TaxesAmount()))
}

// ComputeTotals recomputes the document totals from its line items.
// total_amount = subtotal + taxes_total always holds after this call.
func (d *Document) ComputeTotals() {
	subtotal := decimal.Zero
	taxesTotal := decimal.Zero
	for _, item := range d.LineItems {
		subtotal = subtotal.Add(item.LineSubtotal)
		taxesTotal = taxesTotal.Add(item.LineTaxes.TaxesAmount())
	}
	d.Subtotal = types.RoundAmount(subtotal)
	d.TaxesTotal = types.RoundAmount(taxesTotal)
	d.TotalAmount = types.RoundAmount(d.Subtotal.Add(d.TaxesTotal))
}

// Validate checks document-level invariants
func (d *Document) Validate() error {
	if !d.DocumentType.Validate() {
		return ierr.NewError("invalid document type").
			WithHint("Document type must be sale or purchase").
			Mark(ierr.ErrValidation)
	}
	if d.CounterpartyID == "" {
		return ierr.NewError("counterparty_id is required").
			WithHint("Documents must reference a counterparty").
			Mark(ierr.ErrValidation)
	}
	if d.LocationID == "" {
		return ierr.NewError("location_id is required").
			WithHint("Documents must reference a location").
			Mark(ierr.ErrValidation)
	}
	if len(d.LineItems) == 0 {
		return ierr.NewError("document has no line items").
			WithHint("At least one line item is required").
			Mark(ierr.ErrValidation)
	}
	if !d.TotalAmount.Equal(d.Subtotal.Add(d.TaxesTotal)) {
		return ierr.NewError("document totals are inconsistent").
			WithHint("total_amount must equal subtotal + taxes_total").
			Mark(ierr.ErrValidation)
	}
	for _, item := range d.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

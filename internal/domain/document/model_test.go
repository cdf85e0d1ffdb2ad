package document

import (
	"testing"

	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLine(qty, price float64, taxes TaxLines) *LineItem {
	line := &LineItem{
		ProductID: "prod_1",
		Quantity:  decimal.NewFromFloat(qty),
		UnitPrice: decimal.NewFromFloat(price),
		LineTaxes: taxes,
	}
	line.Compute()
	return line
}

func TestLineItemCompute(t *testing.T) {
	line := testLine(3, 19.99, TaxLines{
		{TaxID: "tax_1", TaxRate: decimal.NewFromInt(13), TaxAmount: decimal.NewFromFloat(7.80)},
	})

	assert.True(t, line.LineSubtotal.Equal(decimal.NewFromFloat(59.97)), line.LineSubtotal.String())
	assert.True(t, line.LineTotal.Equal(decimal.NewFromFloat(67.77)), line.LineTotal.String())
}

func TestComputeTotalsInvariant(t *testing.T) {
	doc := &Document{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "client_1",
		LocationID:     "loc_1",
		LineItems: []*LineItem{
			testLine(1, 100.005, nil),
			testLine(1, 50, TaxLines{
				{TaxID: "tax_1", TaxAmount: decimal.NewFromFloat(6.50)},
			}),
		},
	}
	doc.ComputeTotals()

	require.NoError(t, doc.Validate())
	assert.True(t, doc.TotalAmount.Equal(doc.Subtotal.Add(doc.TaxesTotal)))
	// 100.005 rounds half up to 100.01
	assert.True(t, doc.Subtotal.Equal(decimal.NewFromFloat(150.01)), doc.Subtotal.String())
	assert.True(t, doc.TaxesTotal.Equal(decimal.NewFromFloat(6.50)))
}

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr bool
	}{
		{"valid", func(d *Document) {}, false},
		{"missing counterparty", func(d *Document) { d.CounterpartyID = "" }, true},
		{"missing location", func(d *Document) { d.LocationID = "" }, true},
		{"no lines", func(d *Document) { d.LineItems = nil }, true},
		{"bad type", func(d *Document) { d.DocumentType = "credit_note" }, true},
		{"inconsistent totals", func(d *Document) { d.TotalAmount = d.TotalAmount.Add(decimal.NewFromInt(1)) }, true},
		{"negative quantity", func(d *Document) { d.LineItems[0].Quantity = decimal.NewFromInt(-1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{
				DocumentType:   types.DocumentTypeSale,
				CounterpartyID: "client_1",
				LocationID:     "loc_1",
				LineItems:      []*LineItem{testLine(1, 100, nil)},
			}
			doc.ComputeTotals()
			tt.mutate(doc)
			err := doc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaxLinesAmount(t *testing.T) {
	lines := TaxLines{
		{TaxAmount: decimal.NewFromFloat(1.25)},
		{TaxAmount: decimal.NewFromFloat(2.75)},
	}
	assert.True(t, lines.TaxesAmount().Equal(decimal.NewFromInt(4)))
	assert.True(t, TaxLines{}.TaxesAmount().IsZero())
}

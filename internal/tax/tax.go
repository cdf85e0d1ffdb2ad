package tax

import (
	"context"

	"github.com/facturio/facturio/internal/domain/document"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Rate is one tax definition applied to a product.
type Rate struct {
	ID   string
	Name string
	// Percent is the rate as a percentage, e.g. 13 for 13%.
	Percent decimal.Decimal
}

// Calculator computes the tax breakdown for a product line base amount.
// Amounts are rounded half-up to two decimal places.
type Calculator interface {
	Calculate(ctx context.Context, productID string, baseAmount decimal.Decimal) (document.TaxLines, error)
}

// RateTableCalculator resolves taxes from a static product-to-rates table.
type RateTableCalculator struct {
	rates map[string][]Rate
}

func NewRateTableCalculator(rates map[string][]Rate) *RateTableCalculator {
	if rates == nil {
		rates = map[string][]Rate{}
	}
	return &RateTableCalculator{rates: rates}
}

func (c *RateTableCalculator) Calculate(_ context.Context, productID string, baseAmount decimal.Decimal) (document.TaxLines, error) {
	if baseAmount.IsNegative() {
		return nil, ierr.NewError("base amount cannot be negative").
			WithReportableDetails(map[string]any{
				"product_id":  productID,
				"base_amount": baseAmount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	lines := document.TaxLines{}
	for _, r := range c.rates[productID] {
		amount := types.RoundAmount(baseAmount.Mul(r.Percent).Div(decimal.NewFromInt(100)))
		lines = append(lines, document.TaxLine{
			TaxID:     r.ID,
			TaxName:   r.Name,
			TaxRate:   r.Percent,
			TaxAmount: amount,
		})
	}
	return lines, nil
}

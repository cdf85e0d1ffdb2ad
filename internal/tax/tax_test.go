package tax

import (
	"context"
	"testing"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateTableCalculate(t *testing.T) {
	calc := NewRateTableCalculator(map[string][]Rate{
		"prod_1": {
			{ID: "tax_vat", Name: "VAT", Percent: decimal.NewFromInt(13)},
			{ID: "tax_muni", Name: "Municipal", Percent: decimal.NewFromFloat(1.5)},
		},
	})

	lines, err := calc.Calculate(context.Background(), "prod_1", decimal.NewFromInt(200))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "tax_vat", lines[0].TaxID)
	assert.True(t, lines[0].TaxAmount.Equal(decimal.NewFromInt(26)), lines[0].TaxAmount.String())
	assert.Equal(t, "tax_muni", lines[1].TaxID)
	assert.True(t, lines[1].TaxAmount.Equal(decimal.NewFromInt(3)), lines[1].TaxAmount.String())
	assert.True(t, lines.TaxesAmount().Equal(decimal.NewFromInt(29)))
}

func TestRateTableCalculateRoundsHalfUp(t *testing.T) {
	calc := NewRateTableCalculator(map[string][]Rate{
		"prod_1": {{ID: "tax_vat", Name: "VAT", Percent: decimal.NewFromInt(13)}},
	})

	// 33.25 * 13% = 4.3225 -> 4.32
	lines, err := calc.Calculate(context.Background(), "prod_1", decimal.NewFromFloat(33.25))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].TaxAmount.Equal(decimal.NewFromFloat(4.32)), lines[0].TaxAmount.String())

	// 32.50 * 13% = 4.225 -> 4.23
	lines, err = calc.Calculate(context.Background(), "prod_1", decimal.NewFromFloat(32.50))
	require.NoError(t, err)
	assert.True(t, lines[0].TaxAmount.Equal(decimal.NewFromFloat(4.23)), lines[0].TaxAmount.String())
}

func TestRateTableCalculateUntaxedProduct(t *testing.T) {
	calc := NewRateTableCalculator(nil)

	lines, err := calc.Calculate(context.Background(), "prod_unknown", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.True(t, lines.TaxesAmount().IsZero())
}

func TestRateTableCalculateNegativeBase(t *testing.T) {
	calc := NewRateTableCalculator(nil)

	_, err := calc.Calculate(context.Background(), "prod_1", decimal.NewFromInt(-10))
	assert.True(t, ierr.IsValidation(err))
}

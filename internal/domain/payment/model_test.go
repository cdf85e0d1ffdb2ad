package payment

import (
	"testing"

	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeDocumentStatus(t *testing.T) {
	tests := []struct {
		name    string
		current types.DocumentStatus
		total   float64
		paid    float64
		want    types.DocumentStatus
	}{
		{"no payments stays open", types.DocumentStatusOpen, 226, 0, types.DocumentStatusOpen},
		{"partial payment", types.DocumentStatusOpen, 226, 100, types.DocumentStatusPartial},
		{"exact payment", types.DocumentStatusOpen, 226, 226, types.DocumentStatusPaid},
		{"overpayment", types.DocumentStatusOpen, 226, 300, types.DocumentStatusPaid},
		{"partial to paid", types.DocumentStatusPartial, 226, 226, types.DocumentStatusPaid},
		{"partial stays partial", types.DocumentStatusPartial, 226, 150, types.DocumentStatusPartial},
		{"zero total no payments stays open", types.DocumentStatusOpen, 0, 0, types.DocumentStatusOpen},
		{"zero total first payment pays", types.DocumentStatusOpen, 0, 10, types.DocumentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDocumentStatus(tt.current, decimal.NewFromFloat(tt.total), decimal.NewFromFloat(tt.paid))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	valid := &Payment{
		DocumentID: "doc_1",
		Amount:     decimal.NewFromInt(100),
		Method:     types.PaymentMethodCash,
	}
	assert.NoError(t, valid.Validate())

	missingDoc := &Payment{Amount: decimal.NewFromInt(100), Method: types.PaymentMethodCash}
	assert.Error(t, missingDoc.Validate())

	zeroAmount := &Payment{DocumentID: "doc_1", Amount: decimal.Zero, Method: types.PaymentMethodCash}
	assert.Error(t, zeroAmount.Validate())

	negativeAmount := &Payment{DocumentID: "doc_1", Amount: decimal.NewFromInt(-5), Method: types.PaymentMethodCash}
	assert.Error(t, negativeAmount.Validate())

	badMethod := &Payment{DocumentID: "doc_1", Amount: decimal.NewFromInt(100), Method: "crypto"}
	assert.Error(t, badMethod.Validate())
}

package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDocumentStatusTransitions(t *testing.T) {
	allowed := map[DocumentStatus][]DocumentStatus{
		DocumentStatusDraft:   {DocumentStatusOpen, DocumentStatusVoid},
		DocumentStatusOpen:    {DocumentStatusPartial, DocumentStatusPaid, DocumentStatusVoid},
		DocumentStatusPartial: {DocumentStatusPaid, DocumentStatusVoid},
		DocumentStatusPaid:    {},
		DocumentStatusVoid:    {},
	}
	all := []DocumentStatus{
		DocumentStatusDraft, DocumentStatusOpen, DocumentStatusPartial,
		DocumentStatusPaid, DocumentStatusVoid,
	}

	for from, targets := range allowed {
		legal := map[DocumentStatus]bool{}
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			assert.Equal(t, legal[to], from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestDocumentStatusPredicates(t *testing.T) {
	assert.True(t, DocumentStatusDraft.IsEditable())
	assert.False(t, DocumentStatusOpen.IsEditable())

	assert.True(t, DocumentStatusOpen.AcceptsPayments())
	assert.True(t, DocumentStatusPartial.AcceptsPayments())
	assert.False(t, DocumentStatusDraft.AcceptsPayments())
	assert.False(t, DocumentStatusPaid.AcceptsPayments())
	assert.False(t, DocumentStatusVoid.AcceptsPayments())

	assert.True(t, DocumentStatusPaid.IsTerminal())
	assert.True(t, DocumentStatusVoid.IsTerminal())
	assert.False(t, DocumentStatusPartial.IsTerminal())
}

func TestDocumentTypeStockSign(t *testing.T) {
	assert.True(t, DocumentTypeSale.StockSign().Equal(decimal.NewFromInt(-1)))
	assert.True(t, DocumentTypePurchase.StockSign().Equal(decimal.NewFromInt(1)))
}

func TestDocumentTypeNumberPrefix(t *testing.T) {
	assert.Equal(t, "F-", DocumentTypeSale.NumberPrefix())
	assert.Equal(t, "B-", DocumentTypePurchase.NumberPrefix())
}

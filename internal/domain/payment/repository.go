package payment

import (
	"context"

	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create appends a payment row. Payments are immutable once written.
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// ListByDocument returns every payment for a document in chronological order.
	ListByDocument(ctx context.Context, documentID string) ([]*Payment, error)
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
	// SumByDocument returns the cumulative paid amount for a document.
	SumByDocument(ctx context.Context, documentID string) (decimal.Decimal, error)
}

package stock

import (
	"context"

	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Repository owns stock levels and the inventory movement ledger. Apply and
// ApplyBatch serialize updates on the affected level rows so concurrent
// confirmations never lose updates.
type Repository interface {
	// Apply atomically adds the delta to the level and appends a movement.
	// Fails with ErrInsufficientStock when the resulting quantity would be
	// negative, and with ErrAlreadyExists when a movement for the same
	// (reference document, product) was already applied.
	Apply(ctx context.Context, in *ApplyInput) (*Movement, error)

	// ApplyBatch applies all inputs or none of them
	ApplyBatch(ctx context.Context, ins []*ApplyInput) ([]*Movement, error)

	// GetLevel reads the authoritative level directly, not by replay.
	// Returns a zero-quantity level when no row exists yet.
	GetLevel(ctx context.Context, locationID, productID string) (*Level, error)

	// ListLevelsByProduct returns the levels of a product across locations
	ListLevelsByProduct(ctx context.Context, productID string) ([]*Level, error)

	// SetMinQuantity updates the low-stock threshold of a level
	SetMinQuantity(ctx context.Context, locationID, productID string, min decimal.Decimal) error

	// ListMovements returns movements in chronological order
	ListMovements(ctx context.Context, filter *types.StockMovementFilter) ([]*Movement, error)

	// CountMovements returns the total count for the filter
	CountMovements(ctx context.Context, filter *types.StockMovementFilter) (int, error)
}

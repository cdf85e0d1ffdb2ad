package cashregister

import (
	"context"

	"github.com/facturio/facturio/internal/types"
)

type Repository interface {
	// CreateOpen inserts a new open register. It returns ErrAlreadyExists when
	// another register is already open for the same (tenant, location), even
	// under concurrent opens.
	CreateOpen(ctx context.Context, r *Register) error
	Get(ctx context.Context, id string) (*Register, error)
	// GetForUpdate retrieves a register under a row lock. Must run inside a
	// transaction; it serializes movement writes against the close.
	GetForUpdate(ctx context.Context, id string) (*Register, error)
	// GetOpenByLocation returns the open register at a location, or ErrNotFound.
	GetOpenByLocation(ctx context.Context, locationID string) (*Register, error)
	// Update persists closing fields. It returns ErrStateConflict when the
	// register is no longer in the expected status.
	Update(ctx context.Context, r *Register, expected types.CashRegisterStatus) error
	List(ctx context.Context, filter *types.QueryFilter) ([]*Register, error)
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)
	// AddMovement appends a cash movement to a register session.
	AddMovement(ctx context.Context, m *Movement) error
	// ListMovements returns a register's movements in chronological order.
	ListMovements(ctx context.Context, registerID string) ([]*Movement, error)
}

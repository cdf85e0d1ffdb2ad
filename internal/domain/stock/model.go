package stock

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Level is the authoritative on-hand quantity per (tenant, location,
// product). It always equals the replay of the movement log from zero.
type Level struct {
	TenantID    string          `db:"tenant_id" json:"tenant_id"`
	LocationID  string          `db:"location_id" json:"location_id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	MinQuantity decimal.Decimal `db:"min_quantity" json:"min_quantity"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// IsLow reports whether the level sits at or below its configured minimum
func (l *Level) IsLow() bool {
	return l.MinQuantity.IsPositive() && l.Quantity.LessThanOrEqual(l.MinQuantity)
}

// Movement is one immutable row of the inventory ledger. The chronological
// movement log per (location, product) with a running balance is the kardex.
type Movement struct {
	ID                  string                  `db:"id" json:"id"`
	ProductID           string                  `db:"product_id" json:"product_id"`
	LocationID          string                  `db:"location_id" json:"location_id"`
	Quantity            decimal.Decimal         `db:"quantity" json:"quantity"` // signed delta
	MovementType        types.StockMovementType `db:"movement_type" json:"movement_type"`
	ReferenceDocumentID *string                 `db:"reference_document_id" json:"reference_document_id,omitempty"`
	Notes               string                  `db:"notes" json:"notes,omitempty"`
	types.BaseModel
}

// ApplyInput describes one delta to apply to a stock level
type ApplyInput struct {
	ProductID           string
	LocationID          string
	Delta               decimal.Decimal
	MovementType        types.StockMovementType
	ReferenceDocumentID *string
	Notes               string
}

func (in *ApplyInput) Validate() error {
	if in.ProductID == "" || in.LocationID == "" {
		return ierr.NewError("product_id and location_id are required").
			WithHint("Stock movements must reference a product and a location").
			Mark(ierr.ErrValidation)
	}
	if in.Delta.IsZero() {
		return ierr.NewError("movement delta cannot be zero").
			WithHint("A stock movement must change the quantity").
			Mark(ierr.ErrValidation)
	}
	if !in.MovementType.Validate() {
		return ierr.NewError("invalid movement type").
			WithHint("Movement type must be in, out, adjustment or transfer").
			Mark(ierr.ErrValidation)
	}
	return nil
}

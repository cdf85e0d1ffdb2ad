package dto

import (
	"github.com/facturio/facturio/internal/domain/stock"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest applies a manual signed correction to a stock level.
type AdjustStockRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	Delta      decimal.Decimal `json:"delta" validate:"required"`
	Notes      string          `json:"notes,omitempty"`
}

func (r *AdjustStockRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid stock adjustment request").
			Mark(ierr.ErrValidation)
	}
	if r.Delta.IsZero() {
		return ierr.NewError("adjustment delta cannot be zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransferStockRequest moves quantity between two locations of the tenant.
type TransferStockRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	FromLocationID string          `json:"from_location_id" validate:"required"`
	ToLocationID   string          `json:"to_location_id" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity" validate:"required"`
	Notes          string          `json:"notes,omitempty"`
}

func (r *TransferStockRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid stock transfer request").
			Mark(ierr.ErrValidation)
	}
	if !r.Quantity.IsPositive() {
		return ierr.NewError("transfer quantity must be positive").
			Mark(ierr.ErrValidation)
	}
	if r.FromLocationID == r.ToLocationID {
		return ierr.NewError("transfer locations must differ").
			WithHint("Source and destination locations cannot be the same").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type SetMinQuantityRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	LocationID  string          `json:"location_id" validate:"required"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

func (r *SetMinQuantityRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid minimum quantity request").
			Mark(ierr.ErrValidation)
	}
	if r.MinQuantity.IsNegative() {
		return ierr.NewError("minimum quantity cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type StockLevelResponse struct {
	*stock.Level
	IsLow bool `json:"is_low"`
}

func NewStockLevelResponse(l *stock.Level) *StockLevelResponse {
	return &StockLevelResponse{Level: l, IsLow: l.IsLow()}
}

// KardexEntryResponse is one movement with the running balance after it.
type KardexEntryResponse struct {
	*stock.Movement
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type KardexResponse struct {
	Items      []*KardexEntryResponse   `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

type ListStockMovementsResponse struct {
	Items      []*stock.Movement        `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

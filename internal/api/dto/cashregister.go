package dto

import (
	"github.com/facturio/facturio/internal/domain/cashregister"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

type OpenRegisterRequest struct {
	LocationID     string          `json:"location_id" validate:"required"`
	Name           string          `json:"name,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes,omitempty"`
}

func (r *OpenRegisterRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid register open request").
			Mark(ierr.ErrValidation)
	}
	if r.OpeningBalance.IsNegative() {
		return ierr.NewError("opening balance cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type RecordCashMovementRequest struct {
	RegisterID string                 `json:"register_id" validate:"required"`
	Type       types.CashMovementType `json:"type" validate:"required"`
	Amount     decimal.Decimal        `json:"amount" validate:"required"`
	Reference  string                 `json:"reference,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
}

func (r *RecordCashMovementRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid cash movement request").
			Mark(ierr.ErrValidation)
	}
	if !r.Type.Validate() {
		return ierr.NewError("invalid cash movement type").
			WithHint("Movement type must be deposit, withdrawal, expense or adjustment").
			Mark(ierr.ErrValidation)
	}
	if r.Type == types.CashMovementTypeSale {
		return ierr.NewError("sale movements are recorded by sales only").
			WithHint("Use the sale flow to record sale cash movements").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CloseRegisterRequest struct {
	RegisterID      string          `json:"register_id" validate:"required"`
	DeclaredBalance decimal.Decimal `json:"declared_balance"`
	Notes           string          `json:"notes,omitempty"`
}

func (r *CloseRegisterRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid register close request").
			Mark(ierr.ErrValidation)
	}
	if r.DeclaredBalance.IsNegative() {
		return ierr.NewError("declared balance cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type RegisterResponse struct {
	*cashregister.Register
}

type CloseRegisterResponse struct {
	*cashregister.Register
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Difference      decimal.Decimal `json:"difference"`
}

// RegisterSnapshotResponse is the live view of a register session.
type RegisterSnapshotResponse struct {
	Register        *cashregister.Register                     `json:"register"`
	Movements       []*cashregister.Movement                   `json:"movements"`
	ComputedBalance decimal.Decimal                            `json:"computed_balance"`
	Summary         map[types.CashMovementType]decimal.Decimal `json:"summary"`
}

type ListRegistersResponse struct {
	Items      []*RegisterResponse      `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

package cashregister

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Register is a cash register session at a location. At most one register may
// be open per (tenant, location) at any time.
type Register struct {
	ID             string                   `db:"id" json:"id"`
	LocationID     string                   `db:"location_id" json:"location_id"`
	Name           string                   `db:"name" json:"name,omitempty"`
	Status         types.CashRegisterStatus `db:"status" json:"status"`
	OpeningBalance decimal.Decimal          `db:"opening_balance" json:"opening_balance"`
	ClosingBalance *decimal.Decimal         `db:"closing_balance" json:"closing_balance,omitempty"`
	OpenedBy       string                   `db:"opened_by" json:"opened_by"`
	ClosedBy       *string                  `db:"closed_by" json:"closed_by,omitempty"`
	OpenedAt       time.Time                `db:"opened_at" json:"opened_at"`
	ClosedAt       *time.Time               `db:"closed_at" json:"closed_at,omitempty"`
	OpeningNotes   string                   `db:"opening_notes" json:"opening_notes,omitempty"`
	ClosingNotes   string                   `db:"closing_notes" json:"closing_notes,omitempty"`
	types.BaseModel
}

func (r *Register) Validate() error {
	if r.LocationID == "" {
		return ierr.NewError("location_id is required").
			WithHint("Cash registers must be opened at a location").
			Mark(ierr.ErrValidation)
	}
	if r.OpeningBalance.IsNegative() {
		return ierr.NewError("opening balance cannot be negative").
			WithReportableDetails(map[string]any{"opening_balance": r.OpeningBalance.String()}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *Register) IsOpen() bool {
	return r.Status == types.CashRegisterStatusOpen
}

// Movement is one append-only cash movement inside a register session.
// Amount is stored as recorded; the effective signed value comes from the
// movement type (adjustments carry their own sign).
type Movement struct {
	ID         string                 `db:"id" json:"id"`
	RegisterID string                 `db:"register_id" json:"register_id"`
	Type       types.CashMovementType `db:"type" json:"type"`
	Amount     decimal.Decimal        `db:"amount" json:"amount"`
	Reference  string                 `db:"reference" json:"reference,omitempty"`
	Notes      string                 `db:"notes" json:"notes,omitempty"`
	DocumentID *string                `db:"document_id" json:"document_id,omitempty"`
	types.BaseModel
}

func (m *Movement) Validate() error {
	if m.RegisterID == "" {
		return ierr.NewError("register_id is required").
			Mark(ierr.ErrValidation)
	}
	if !m.Type.Validate() {
		return ierr.NewError("invalid cash movement type").
			WithHint("Movement type must be sale, deposit, withdrawal, expense or adjustment").
			Mark(ierr.ErrValidation)
	}
	if m.Amount.IsZero() {
		return ierr.NewError("cash movement amount cannot be zero").
			Mark(ierr.ErrValidation)
	}
	if m.Type != types.CashMovementTypeAdjustment && m.Amount.IsNegative() {
		return ierr.NewError("cash movement amount must be positive").
			WithHint("Only adjustments may carry a negative amount").
			WithReportableDetails(map[string]any{
				"type":   m.Type,
				"amount": m.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SignedAmount returns the movement's contribution to the register balance.
func (m *Movement) SignedAmount() decimal.Decimal {
	return m.Type.SignedAmount(m.Amount)
}

// ComputeBalance replays movements on top of an opening balance.
func ComputeBalance(opening decimal.Decimal, movements []*Movement) decimal.Decimal {
	balance := opening
	for _, m := range movements {
		balance = balance.Add(m.SignedAmount())
	}
	return types.RoundAmount(balance)
}

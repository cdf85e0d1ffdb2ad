package service

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/cashregister"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CashRegisterService manages register sessions: opening, manual cash
// movements, closing with reconciliation, and the live snapshot view.
type CashRegisterService interface {
	OpenRegister(ctx context.Context, req *dto.OpenRegisterRequest) (*dto.RegisterResponse, error)
	RecordMovement(ctx context.Context, req *dto.RecordCashMovementRequest) (*cashregister.Movement, error)
	CloseRegister(ctx context.Context, req *dto.CloseRegisterRequest) (*dto.CloseRegisterResponse, error)
	GetRegister(ctx context.Context, id string) (*dto.RegisterResponse, error)
	GetCurrentRegister(ctx context.Context, locationID string) (*dto.RegisterResponse, error)
	GetSnapshot(ctx context.Context, id string) (*dto.RegisterSnapshotResponse, error)
	ListRegisters(ctx context.Context, filter *types.QueryFilter) (*dto.ListRegistersResponse, error)
}

type cashRegisterService struct {
	ServiceParams
}

func NewCashRegisterService(params ServiceParams) CashRegisterService {
	return &cashRegisterService{ServiceParams: params}
}

// OpenRegister starts a session at a location. At most one open session per
// location is allowed; concurrent opens leave exactly one winner.
func (s *cashRegisterService) OpenRegister(ctx context.Context, req *dto.OpenRegisterRequest) (*dto.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reg := &cashregister.Register{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASH_REGISTER),
		LocationID:     req.LocationID,
		Name:           req.Name,
		Status:         types.CashRegisterStatusOpen,
		OpeningBalance: types.RoundAmount(req.OpeningBalance),
		OpenedBy:       types.GetUserID(ctx),
		OpenedAt:       time.Now().UTC(),
		OpeningNotes:   req.Notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	if err := s.CashRegisterRepo.CreateOpen(ctx, reg); err != nil {
		return nil, err
	}

	s.Logger.Infow("opened cash register",
		"register_id", reg.ID,
		"location_id", reg.LocationID,
		"opening_balance", reg.OpeningBalance)
	return &dto.RegisterResponse{Register: reg}, nil
}

// RecordMovement appends a manual movement to an open register. Sale
// movements are excluded here; they are written by the sale flow. The
// register row is locked for the open check and the insert together, so a
// movement either precedes the close reconciliation or is rejected.
func (s *cashRegisterService) RecordMovement(ctx context.Context, req *dto.RecordCashMovementRequest) (*cashregister.Movement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := &cashregister.Movement{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASH_MOVEMENT),
		RegisterID: req.RegisterID,
		Type:       req.Type,
		Amount:     types.RoundAmount(req.Amount),
		Reference:  req.Reference,
		Notes:      req.Notes,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		reg, err := s.CashRegisterRepo.GetForUpdate(txCtx, req.RegisterID)
		if err != nil {
			return err
		}
		if !reg.IsOpen() {
			return ierr.NewError("cash register is closed").
				WithHint("Movements can only be recorded on an open register").
				WithReportableDetails(map[string]any{"register_id": reg.ID}).
				Mark(ierr.ErrStateConflict)
		}
		return s.CashRegisterRepo.AddMovement(txCtx, m)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded cash movement",
		"register_id", m.RegisterID,
		"movement_id", m.ID,
		"type", m.Type,
		"amount", m.Amount)
	return m, nil
}

// CloseRegister reconciles and closes a session. The difference between the
// declared and the computed balance is materialized as an adjustment
// movement, so replaying the closed session yields the declared balance.
func (s *cashRegisterService) CloseRegister(ctx context.Context, req *dto.CloseRegisterRequest) (*dto.CloseRegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var reg *cashregister.Register
	var computed decimal.Decimal
	var difference decimal.Decimal
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		reg, err = s.CashRegisterRepo.GetForUpdate(txCtx, req.RegisterID)
		if err != nil {
			return err
		}
		if !reg.IsOpen() {
			return ierr.NewError("cash register is already closed").
				WithReportableDetails(map[string]any{"register_id": reg.ID}).
				Mark(ierr.ErrStateConflict)
		}
		movements, err := s.CashRegisterRepo.ListMovements(txCtx, reg.ID)
		if err != nil {
			return err
		}
		computed = cashregister.ComputeBalance(reg.OpeningBalance, movements)
		declared := types.RoundAmount(req.DeclaredBalance)
		difference = declared.Sub(computed)

		if !difference.IsZero() {
			adj := &cashregister.Movement{
				ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASH_MOVEMENT),
				RegisterID: reg.ID,
				Type:       types.CashMovementTypeAdjustment,
				Amount:     difference,
				Notes:      "closing reconciliation",
				BaseModel:  types.GetDefaultBaseModel(txCtx),
			}
			if err := s.CashRegisterRepo.AddMovement(txCtx, adj); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		closedBy := types.GetUserID(txCtx)
		reg.Status = types.CashRegisterStatusClosed
		reg.ClosingBalance = &declared
		reg.ClosedBy = &closedBy
		reg.ClosedAt = &now
		reg.ClosingNotes = req.Notes
		reg.UpdatedAt = now
		reg.UpdatedBy = closedBy
		return s.CashRegisterRepo.Update(txCtx, reg, types.CashRegisterStatusOpen)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("closed cash register",
		"register_id", reg.ID,
		"computed_balance", computed,
		"declared_balance", lo.FromPtr(reg.ClosingBalance),
		"difference", difference)
	return &dto.CloseRegisterResponse{
		Register:        reg,
		ComputedBalance: computed,
		Difference:      difference,
	}, nil
}

func (s *cashRegisterService) GetRegister(ctx context.Context, id string) (*dto.RegisterResponse, error) {
	reg, err := s.CashRegisterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterResponse{Register: reg}, nil
}

func (s *cashRegisterService) GetCurrentRegister(ctx context.Context, locationID string) (*dto.RegisterResponse, error) {
	reg, err := s.CashRegisterRepo.GetOpenByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterResponse{Register: reg}, nil
}

// GetSnapshot returns the register with its movements, the computed balance
// and per type totals of the session so far.
func (s *cashRegisterService) GetSnapshot(ctx context.Context, id string) (*dto.RegisterSnapshotResponse, error) {
	reg, err := s.CashRegisterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	movements, err := s.CashRegisterRepo.ListMovements(ctx, reg.ID)
	if err != nil {
		return nil, err
	}

	summary := map[types.CashMovementType]decimal.Decimal{}
	for _, m := range movements {
		summary[m.Type] = summary[m.Type].Add(m.SignedAmount())
	}
	return &dto.RegisterSnapshotResponse{
		Register:        reg,
		Movements:       movements,
		ComputedBalance: cashregister.ComputeBalance(reg.OpeningBalance, movements),
		Summary:         summary,
	}, nil
}

func (s *cashRegisterService) ListRegisters(ctx context.Context, filter *types.QueryFilter) (*dto.ListRegistersResponse, error) {
	if filter == nil {
		filter = &types.QueryFilter{}
	}
	regs, err := s.CashRegisterRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.CashRegisterRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := lo.Map(regs, func(r *cashregister.Register, _ int) *dto.RegisterResponse {
		return &dto.RegisterResponse{Register: r}
	})
	return &dto.ListRegistersResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

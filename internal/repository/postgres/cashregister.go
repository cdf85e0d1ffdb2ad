package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturio/internal/domain/cashregister"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
)

type cashRegisterRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCashRegisterRepository(db *postgres.DB, logger *logger.Logger) cashregister.Repository {
	return &cashRegisterRepository{db: db, logger: logger}
}

// CreateOpen relies on the partial unique index over open registers per
// (tenant, location), so concurrent opens resolve to exactly one winner.
func (r *cashRegisterRepository) CreateOpen(ctx context.Context, reg *cashregister.Register) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO cash_registers (
	id, tenant_id, location_id, name, status, opening_balance, closing_balance,
	opened_by, closed_by, opened_at, closed_at, opening_notes, closing_notes,
	created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :tenant_id, :location_id, :name, :status, :opening_balance, :closing_balance,
	:opened_by, :closed_by, :opened_at, :closed_at, :opening_notes, :closing_notes,
	:created_at, :updated_at, :created_by, :updated_by
)`, reg)
	if err != nil {
		mapped := mapSQLError(err, "failed to open cash register")
		if ierr.IsAlreadyExists(mapped) {
			return ierr.WithError(err).
				WithMessage("a cash register is already open at this location").
				WithHint("Close the current register before opening a new one").
				WithReportableDetails(map[string]any{"location_id": reg.LocationID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return mapped
	}
	return nil
}

func (r *cashRegisterRepository) Get(ctx context.Context, id string) (*cashregister.Register, error) {
	var reg cashregister.Register
	err := r.db.GetQuerier(ctx).GetContext(ctx, &reg,
		`SELECT * FROM cash_registers WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "cash register not found")
	}
	return &reg, nil
}

// GetForUpdate locks the register row for the rest of the transaction.
// Movement writes and the close reconciliation both take this lock, so a
// movement either lands before the close computes its balance or fails the
// open check after it.
func (r *cashRegisterRepository) GetForUpdate(ctx context.Context, id string) (*cashregister.Register, error) {
	var reg cashregister.Register
	err := r.db.GetQuerier(ctx).GetContext(ctx, &reg,
		`SELECT * FROM cash_registers WHERE id = $1 AND tenant_id = $2 FOR UPDATE`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "cash register not found")
	}
	return &reg, nil
}

func (r *cashRegisterRepository) GetOpenByLocation(ctx context.Context, locationID string) (*cashregister.Register, error) {
	var reg cashregister.Register
	err := r.db.GetQuerier(ctx).GetContext(ctx, &reg,
		`SELECT * FROM cash_registers WHERE tenant_id = $1 AND location_id = $2 AND status = 'open'`,
		types.GetTenantID(ctx), locationID)
	if err != nil {
		return nil, mapSQLError(err, "no open cash register at location")
	}
	return &reg, nil
}

func (r *cashRegisterRepository) Update(ctx context.Context, reg *cashregister.Register, expected types.CashRegisterStatus) error {
	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, `
UPDATE cash_registers SET
	status = $1,
	closing_balance = $2,
	closed_by = $3,
	closed_at = $4,
	closing_notes = $5,
	updated_at = $6,
	updated_by = $7
WHERE id = $8 AND tenant_id = $9 AND status = $10`,
		reg.Status, reg.ClosingBalance, reg.ClosedBy, reg.ClosedAt, reg.ClosingNotes,
		reg.UpdatedAt, reg.UpdatedBy, reg.ID, types.GetTenantID(ctx), expected)
	if err != nil {
		return mapSQLError(err, "failed to update cash register")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapSQLError(err, "failed to update cash register")
	}
	if affected == 0 {
		return ierr.NewError("cash register status changed concurrently").
			WithHint("The register is no longer in the expected status").
			WithReportableDetails(map[string]any{"register_id": reg.ID}).
			Mark(ierr.ErrStateConflict)
	}
	return nil
}

func (r *cashRegisterRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*cashregister.Register, error) {
	query := fmt.Sprintf(
		`SELECT * FROM cash_registers WHERE tenant_id = $1 ORDER BY opened_at DESC, id LIMIT %d OFFSET %d`,
		filter.GetLimit(), filter.GetOffset())

	regs := []*cashregister.Register{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &regs, query, types.GetTenantID(ctx)); err != nil {
		return nil, mapSQLError(err, "failed to list cash registers")
	}
	return regs, nil
}

func (r *cashRegisterRepository) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	var count int
	err := r.db.GetQuerier(ctx).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM cash_registers WHERE tenant_id = $1`,
		types.GetTenantID(ctx))
	if err != nil {
		return 0, mapSQLError(err, "failed to count cash registers")
	}
	return count, nil
}

func (r *cashRegisterRepository) AddMovement(ctx context.Context, m *cashregister.Movement) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO cash_movements (
	id, tenant_id, register_id, type, amount, reference, notes, document_id,
	created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :tenant_id, :register_id, :type, :amount, :reference, :notes, :document_id,
	:created_at, :updated_at, :created_by, :updated_by
)`, m)
	if err != nil {
		return mapSQLError(err, "failed to insert cash movement")
	}
	return nil
}

func (r *cashRegisterRepository) ListMovements(ctx context.Context, registerID string) ([]*cashregister.Movement, error) {
	movements := []*cashregister.Movement{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &movements,
		`SELECT * FROM cash_movements WHERE tenant_id = $1 AND register_id = $2 ORDER BY created_at, id`,
		types.GetTenantID(ctx), registerID)
	if err != nil {
		return nil, mapSQLError(err, "failed to list cash movements")
	}
	return movements, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/facturio/facturio/internal/domain/stock"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

type stockRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewStockRepository(db *postgres.DB, logger *logger.Logger) stock.Repository {
	return &stockRepository{db: db, logger: logger}
}

// Apply upserts the level and appends the movement in one transaction. The
// level upsert takes a row lock, serializing concurrent writers on the same
// (tenant, location, product).
func (r *stockRepository) Apply(ctx context.Context, in *stock.ApplyInput) (*stock.Movement, error) {
	var mov *stock.Movement
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		mov, err = r.apply(txCtx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

func (r *stockRepository) ApplyBatch(ctx context.Context, ins []*stock.ApplyInput) ([]*stock.Movement, error) {
	var movements []*stock.Movement
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		movements = movements[:0]
		for _, in := range ins {
			mov, err := r.apply(txCtx, in)
			if err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *stockRepository) apply(ctx context.Context, in *stock.ApplyInput) (*stock.Movement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tenantID := types.GetTenantID(ctx)
	q := r.db.GetQuerier(ctx)

	var quantity decimal.Decimal
	err := q.GetContext(ctx, &quantity, `
INSERT INTO stock_levels (tenant_id, location_id, product_id, quantity, min_quantity, updated_at)
VALUES ($1, $2, $3, $4, 0, $5)
ON CONFLICT (tenant_id, location_id, product_id)
DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
RETURNING quantity`,
		tenantID, in.LocationID, in.ProductID, in.Delta, time.Now().UTC())
	if err != nil {
		return nil, mapSQLError(err, "failed to update stock level")
	}
	if quantity.IsNegative() {
		return nil, ierr.NewError("insufficient stock").
			WithHint("The movement would drive the stock level negative").
			WithReportableDetails(map[string]any{
				"product_id":  in.ProductID,
				"location_id": in.LocationID,
				"delta":       in.Delta.String(),
			}).
			Mark(ierr.ErrInsufficientStock)
	}

	mov := &stock.Movement{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_STOCK_MOVEMENT),
		ProductID:           in.ProductID,
		LocationID:          in.LocationID,
		Quantity:            in.Delta,
		MovementType:        in.MovementType,
		ReferenceDocumentID: in.ReferenceDocumentID,
		Notes:               in.Notes,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	_, err = r.db.NamedExecContext(ctx, `
INSERT INTO stock_movements (
	id, tenant_id, product_id, location_id, quantity, movement_type,
	reference_document_id, notes, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :tenant_id, :product_id, :location_id, :quantity, :movement_type,
	:reference_document_id, :notes, :created_at, :updated_at, :created_by, :updated_by
)`, mov)
	if err != nil {
		mapped := mapSQLError(err, "failed to insert stock movement")
		if ierr.IsAlreadyExists(mapped) {
			return nil, ierr.WithError(err).
				WithMessage("stock movement already applied for reference").
				WithHint("A movement with the same reference and product exists").
				WithReportableDetails(map[string]any{
					"product_id": in.ProductID,
					"reference":  in.ReferenceDocumentID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, mapped
	}
	return mov, nil
}

func (r *stockRepository) GetLevel(ctx context.Context, locationID, productID string) (*stock.Level, error) {
	var level stock.Level
	err := r.db.GetQuerier(ctx).GetContext(ctx, &level,
		`SELECT * FROM stock_levels WHERE tenant_id = $1 AND location_id = $2 AND product_id = $3`,
		types.GetTenantID(ctx), locationID, productID)
	if err != nil {
		mapped := mapSQLError(err, "failed to read stock level")
		if ierr.IsNotFound(mapped) {
			return &stock.Level{
				TenantID:   types.GetTenantID(ctx),
				LocationID: locationID,
				ProductID:  productID,
				Quantity:   decimal.Zero,
			}, nil
		}
		return nil, mapped
	}
	return &level, nil
}

func (r *stockRepository) ListLevelsByProduct(ctx context.Context, productID string) ([]*stock.Level, error) {
	levels := []*stock.Level{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &levels,
		`SELECT * FROM stock_levels WHERE tenant_id = $1 AND product_id = $2 ORDER BY location_id`,
		types.GetTenantID(ctx), productID)
	if err != nil {
		return nil, mapSQLError(err, "failed to list stock levels")
	}
	return levels, nil
}

func (r *stockRepository) SetMinQuantity(ctx context.Context, locationID, productID string, min decimal.Decimal) error {
	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, `
INSERT INTO stock_levels (tenant_id, location_id, product_id, quantity, min_quantity, updated_at)
VALUES ($1, $2, $3, 0, $4, $5)
ON CONFLICT (tenant_id, location_id, product_id)
DO UPDATE SET min_quantity = EXCLUDED.min_quantity, updated_at = EXCLUDED.updated_at`,
		types.GetTenantID(ctx), locationID, productID, min, time.Now().UTC())
	if err != nil {
		return mapSQLError(err, "failed to set minimum quantity")
	}
	return nil
}

func (r *stockRepository) ListMovements(ctx context.Context, filter *types.StockMovementFilter) ([]*stock.Movement, error) {
	where, args := movementFilterClauses(ctx, filter)
	query := fmt.Sprintf(
		`SELECT * FROM stock_movements %s ORDER BY created_at, id LIMIT %d OFFSET %d`,
		where, filter.GetLimit(), filter.GetOffset())

	movements := []*stock.Movement{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &movements, query, args...); err != nil {
		return nil, mapSQLError(err, "failed to list stock movements")
	}
	return movements, nil
}

func (r *stockRepository) CountMovements(ctx context.Context, filter *types.StockMovementFilter) (int, error) {
	where, args := movementFilterClauses(ctx, filter)
	var total int
	err := r.db.GetQuerier(ctx).GetContext(ctx, &total,
		fmt.Sprintf(`SELECT COUNT(*) FROM stock_movements %s`, where), args...)
	if err != nil {
		return 0, mapSQLError(err, "failed to count stock movements")
	}
	return total, nil
}

func movementFilterClauses(ctx context.Context, filter *types.StockMovementFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{types.GetTenantID(ctx)}
	idx := 2
	if filter.ProductID != nil {
		where += fmt.Sprintf(" AND product_id = $%d", idx)
		args = append(args, *filter.ProductID)
		idx++
	}
	if filter.LocationID != nil {
		where += fmt.Sprintf(" AND location_id = $%d", idx)
		args = append(args, *filter.LocationID)
		idx++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND movement_type = $%d", idx)
		args = append(args, *filter.Type)
		idx++
	}
	return where, args
}

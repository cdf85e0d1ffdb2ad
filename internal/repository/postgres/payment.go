package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO payments (
	id, tenant_id, document_id, amount, method, reference, payment_date,
	notes, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :tenant_id, :document_id, :amount, :method, :reference, :payment_date,
	:notes, :created_at, :updated_at, :created_by, :updated_by
)`, p)
	if err != nil {
		return mapSQLError(err, "failed to insert payment")
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p,
		`SELECT * FROM payments WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "payment not found")
	}
	return &p, nil
}

func (r *paymentRepository) ListByDocument(ctx context.Context, documentID string) ([]*payment.Payment, error) {
	payments := []*payment.Payment{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments,
		`SELECT * FROM payments WHERE tenant_id = $1 AND document_id = $2 ORDER BY created_at, id`,
		types.GetTenantID(ctx), documentID)
	if err != nil {
		return nil, mapSQLError(err, "failed to list document payments")
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	where, args := paymentFilterClauses(ctx, filter)
	query := fmt.Sprintf(
		`SELECT * FROM payments %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		where, filter.GetLimit(), filter.GetOffset())

	payments := []*payment.Payment{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, mapSQLError(err, "failed to list payments")
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	where, args := paymentFilterClauses(ctx, filter)
	var total int
	err := r.db.GetQuerier(ctx).GetContext(ctx, &total,
		fmt.Sprintf(`SELECT COUNT(*) FROM payments %s`, where), args...)
	if err != nil {
		return 0, mapSQLError(err, "failed to count payments")
	}
	return total, nil
}

func (r *paymentRepository) SumByDocument(ctx context.Context, documentID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetQuerier(ctx).GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE tenant_id = $1 AND document_id = $2`,
		types.GetTenantID(ctx), documentID)
	if err != nil {
		return decimal.Zero, mapSQLError(err, "failed to sum document payments")
	}
	return total, nil
}

func paymentFilterClauses(ctx context.Context, filter *types.PaymentFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{types.GetTenantID(ctx)}
	idx := 2
	if filter.DocumentID != nil {
		where += fmt.Sprintf(" AND document_id = $%d", idx)
		args = append(args, *filter.DocumentID)
		idx++
	}
	if filter.Method != nil {
		where += fmt.Sprintf(" AND method = $%d", idx)
		args = append(args, *filter.Method)
		idx++
	}
	return where, args
}

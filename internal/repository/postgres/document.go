package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturio/internal/domain/document"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
)

type documentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDocumentRepository(db *postgres.DB, logger *logger.Logger) document.Repository {
	return &documentRepository{db: db, logger: logger}
}

const insertDocumentQuery = `
INSERT INTO documents (
	id, tenant_id, document_type, source, status, number, counterparty_id,
	location_id, issue_date, due_date, currency, notes, subtotal, taxes_total,
	total_amount, voided_at, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :tenant_id, :document_type, :source, :status, :number, :counterparty_id,
	:location_id, :issue_date, :due_date, :currency, :notes, :subtotal, :taxes_total,
	:total_amount, :voided_at, :created_at, :updated_at, :created_by, :updated_by
)`

const insertLineItemQuery = `
INSERT INTO document_line_items (
	id, tenant_id, document_id, product_id, name, sku, quantity, unit_price,
	line_subtotal, line_taxes, line_total, created_at, updated_at, created_by, updated_by
) VALUES (
	:id, :tenant_id, :document_id, :product_id, :name, :sku, :quantity, :unit_price,
	:line_subtotal, :line_taxes, :line_total, :created_at, :updated_at, :created_by, :updated_by
)`

func (r *documentRepository) Create(ctx context.Context, doc *document.Document) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := r.db.NamedExecContext(txCtx, insertDocumentQuery, doc); err != nil {
			return mapSQLError(err, "failed to insert document")
		}
		for _, line := range doc.LineItems {
			if _, err := r.db.NamedExecContext(txCtx, insertLineItemQuery, line); err != nil {
				return mapSQLError(err, "failed to insert document line item")
			}
		}
		return nil
	})
}

func (r *documentRepository) Get(ctx context.Context, id string) (*document.Document, error) {
	q := r.db.GetQuerier(ctx)
	var doc document.Document
	err := q.GetContext(ctx, &doc,
		`SELECT * FROM documents WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "document not found")
	}
	err = q.SelectContext(ctx, &doc.LineItems,
		`SELECT * FROM document_line_items WHERE document_id = $1 AND tenant_id = $2 ORDER BY created_at, id`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "failed to load document line items")
	}
	return &doc, nil
}

// GetForUpdate locks the document row for the rest of the transaction so the
// payment sum and the status transition derived from it stay consistent under
// concurrent writers.
func (r *documentRepository) GetForUpdate(ctx context.Context, id string) (*document.Document, error) {
	q := r.db.GetQuerier(ctx)
	var doc document.Document
	err := q.GetContext(ctx, &doc,
		`SELECT * FROM documents WHERE id = $1 AND tenant_id = $2 FOR UPDATE`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "document not found")
	}
	err = q.SelectContext(ctx, &doc.LineItems,
		`SELECT * FROM document_line_items WHERE document_id = $1 AND tenant_id = $2 ORDER BY created_at, id`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "failed to load document line items")
	}
	return &doc, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *document.Document) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		res, err := r.db.NamedExecContext(txCtx, `
UPDATE documents SET
	counterparty_id = :counterparty_id,
	issue_date = :issue_date,
	due_date = :due_date,
	notes = :notes,
	subtotal = :subtotal,
	taxes_total = :taxes_total,
	total_amount = :total_amount,
	updated_at = :updated_at,
	updated_by = :updated_by
WHERE id = :id AND tenant_id = :tenant_id AND status = 'draft'`, doc)
		if err != nil {
			return mapSQLError(err, "failed to update document")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return mapSQLError(err, "failed to update document")
		}
		if affected == 0 {
			return ierr.NewError("document is not editable").
				WithHint("Only draft documents can be edited").
				Mark(ierr.ErrStateConflict)
		}

		q := r.db.GetQuerier(txCtx)
		_, err = q.ExecContext(txCtx,
			`DELETE FROM document_line_items WHERE document_id = $1 AND tenant_id = $2`,
			doc.ID, types.GetTenantID(txCtx))
		if err != nil {
			return mapSQLError(err, "failed to replace document line items")
		}
		for _, line := range doc.LineItems {
			if _, err := r.db.NamedExecContext(txCtx, insertLineItemQuery, line); err != nil {
				return mapSQLError(err, "failed to insert document line item")
			}
		}
		return nil
	})
}

func (r *documentRepository) UpdateStatus(ctx context.Context, doc *document.Document, expected types.DocumentStatus) error {
	q := r.db.GetQuerier(ctx)
	res, err := q.ExecContext(ctx, `
UPDATE documents SET
	status = $1,
	number = COALESCE($2, number),
	voided_at = COALESCE($3, voided_at),
	notes = $4,
	updated_at = $5,
	updated_by = $6
WHERE id = $7 AND tenant_id = $8 AND status = $9`,
		doc.Status, doc.Number, doc.VoidedAt, doc.Notes, doc.UpdatedAt, doc.UpdatedBy,
		doc.ID, types.GetTenantID(ctx), expected)
	if err != nil {
		return mapSQLError(err, "failed to update document status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapSQLError(err, "failed to update document status")
	}
	if affected == 0 {
		return ierr.NewError("document status changed concurrently").
			WithHint("The document is no longer in the expected status").
			WithReportableDetails(map[string]any{
				"document_id": doc.ID,
				"expected":    expected,
			}).
			Mark(ierr.ErrStateConflict)
	}
	return nil
}

func (r *documentRepository) List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error) {
	where, args := documentFilterClauses(ctx, filter)
	query := fmt.Sprintf(
		`SELECT * FROM documents %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		where, filter.GetLimit(), filter.GetOffset())

	docs := []*document.Document{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, mapSQLError(err, "failed to list documents")
	}
	return docs, nil
}

func (r *documentRepository) Count(ctx context.Context, filter *types.DocumentFilter) (int, error) {
	where, args := documentFilterClauses(ctx, filter)
	var total int
	err := r.db.GetQuerier(ctx).GetContext(ctx, &total,
		fmt.Sprintf(`SELECT COUNT(*) FROM documents %s`, where), args...)
	if err != nil {
		return 0, mapSQLError(err, "failed to count documents")
	}
	return total, nil
}

// NextNumber advances the per (tenant, location, type) sequence inside the
// caller's transaction. The upsert takes a row lock, so concurrent
// confirmations serialize and never see the same value.
func (r *documentRepository) NextNumber(ctx context.Context, locationID string, docType types.DocumentType) (string, error) {
	var next int64
	err := r.db.GetQuerier(ctx).GetContext(ctx, &next, `
INSERT INTO document_sequences (tenant_id, location_id, document_type, last_value)
VALUES ($1, $2, $3, 1)
ON CONFLICT (tenant_id, location_id, document_type)
DO UPDATE SET last_value = document_sequences.last_value + 1
RETURNING last_value`,
		types.GetTenantID(ctx), locationID, docType)
	if err != nil {
		return "", mapSQLError(err, "failed to advance document sequence")
	}
	return fmt.Sprintf("%s%06d", docType.NumberPrefix(), next), nil
}

func documentFilterClauses(ctx context.Context, filter *types.DocumentFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{types.GetTenantID(ctx)}
	idx := 2
	add := func(clause string, value interface{}) {
		where += fmt.Sprintf(" AND %s = $%d", clause, idx)
		args = append(args, value)
		idx++
	}
	if filter.DocumentType != nil {
		add("document_type", *filter.DocumentType)
	}
	if filter.Status != nil {
		add("status", *filter.Status)
	}
	if filter.CounterpartyID != nil {
		add("counterparty_id", *filter.CounterpartyID)
	}
	if filter.LocationID != nil {
		add("location_id", *filter.LocationID)
	}
	if filter.IssuedAfter != nil {
		where += fmt.Sprintf(" AND issue_date >= $%d", idx)
		args = append(args, *filter.IssuedAfter)
		idx++
	}
	if filter.IssuedBefore != nil {
		where += fmt.Sprintf(" AND issue_date <= $%d", idx)
		args = append(args, *filter.IssuedBefore)
		idx++
	}
	return where, args
}

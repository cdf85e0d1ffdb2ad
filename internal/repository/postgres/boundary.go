package postgres

import (
	"context"

	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/product"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/tax"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// The directory, catalog and tax boundaries are read-only here. Their
// entities are managed elsewhere; this module only resolves them.

type directoryRepository struct {
	db *postgres.DB
}

func NewDirectory(db *postgres.DB, _ *logger.Logger) contact.Directory {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) Get(ctx context.Context, id string) (*contact.Contact, error) {
	var c contact.Contact
	err := r.db.GetQuerier(ctx).GetContext(ctx, &c,
		`SELECT id, name, type FROM contacts WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "contact not found")
	}
	return &c, nil
}

func (r *directoryRepository) Validate(ctx context.Context, id string, required contact.ContactType) error {
	c, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Type != required {
		return ierr.NewError("contact has the wrong type").
			WithHint("Sales require a client, purchases require a provider").
			WithReportableDetails(map[string]any{
				"contact_id": id,
				"required":   required,
				"actual":     c.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type catalogRepository struct {
	db *postgres.DB
}

func NewCatalog(db *postgres.DB, _ *logger.Logger) product.Catalog {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p,
		`SELECT id, name, sku, default_price FROM products WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "product not found")
	}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &p.TaxIDs,
		`SELECT tax_id FROM product_taxes WHERE product_id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "failed to load product taxes")
	}
	return &p, nil
}

type taxCalculator struct {
	db *postgres.DB
}

func NewTaxCalculator(db *postgres.DB, _ *logger.Logger) tax.Calculator {
	return &taxCalculator{db: db}
}

type taxRateRow struct {
	ID      string          `db:"id"`
	Name    string          `db:"name"`
	Percent decimal.Decimal `db:"percent"`
}

func (c *taxCalculator) Calculate(ctx context.Context, productID string, baseAmount decimal.Decimal) (document.TaxLines, error) {
	rows := []taxRateRow{}
	err := c.db.GetQuerier(ctx).SelectContext(ctx, &rows, `
SELECT t.id, t.name, t.percent
FROM taxes t
JOIN product_taxes pt ON pt.tax_id = t.id AND pt.tenant_id = t.tenant_id
WHERE pt.product_id = $1 AND t.tenant_id = $2
ORDER BY t.id`,
		productID, types.GetTenantID(ctx))
	if err != nil {
		return nil, mapSQLError(err, "failed to load product tax rates")
	}

	lines := document.TaxLines{}
	for _, row := range rows {
		amount := types.RoundAmount(baseAmount.Mul(row.Percent).Div(decimal.NewFromInt(100)))
		lines = append(lines, document.TaxLine{
			TaxID:     row.ID,
			TaxName:   row.Name,
			TaxRate:   row.Percent,
			TaxAmount: amount,
		})
	}
	return lines, nil
}

package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the catalog slice the ledger snapshots onto document lines.
type Product struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	SKU          string          `db:"sku" json:"sku"`
	DefaultPrice decimal.Decimal `db:"default_price" json:"default_price"`
	TaxIDs       []string        `json:"tax_ids,omitempty"`
}

// Catalog resolves products at document build time. Line items snapshot the
// resolved name, sku and price so later catalog edits never mutate issued
// documents.
type Catalog interface {
	Get(ctx context.Context, id string) (*Product, error)
}

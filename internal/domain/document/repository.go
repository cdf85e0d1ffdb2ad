package document

import (
	"context"

	"github.com/facturio/facturio/internal/types"
)

// Repository defines the interface for document persistence operations.
// Every implementation scopes queries by the tenant in the context; a
// document owned by another tenant is indistinguishable from an absent one.
type Repository interface {
	// Create persists a new document together with its line items
	Create(ctx context.Context, doc *Document) error

	// Get retrieves a document with its line items
	Get(ctx context.Context, id string) (*Document, error)

	// GetForUpdate retrieves a document under a row lock. Must run inside a
	// transaction; concurrent writers on the same document block until the
	// holding transaction commits, so status and derived sums read after it
	// are current.
	GetForUpdate(ctx context.Context, id string) (*Document, error)

	// Update rewrites the mutable fields and replaces the line items.
	// Valid only while the document is editable; the service enforces that.
	Update(ctx context.Context, doc *Document) error

	// UpdateStatus transitions the document status with a compare-and-set
	// on the expected current status. Returns ErrStateConflict when the
	// stored status no longer matches.
	UpdateStatus(ctx context.Context, doc *Document, expected types.DocumentStatus) error

	// List retrieves documents based on filter criteria
	List(ctx context.Context, filter *types.DocumentFilter) ([]*Document, error)

	// Count returns the total count of documents based on filter criteria
	Count(ctx context.Context, filter *types.DocumentFilter) (int, error)

	// NextNumber atomically advances the per (tenant, location, type)
	// sequence and returns the formatted document number. Never produces
	// duplicates under concurrent creation.
	NextNumber(ctx context.Context, locationID string, docType types.DocumentType) (string, error)
}

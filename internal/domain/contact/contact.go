package contact

import "context"

// ContactType discriminates directory entries by commercial role.
type ContactType string

const (
	ContactTypeClient   ContactType = "client"
	ContactTypeProvider ContactType = "provider"
)

// Contact is the slice of a directory entry the ledger needs: identity plus
// the role used to validate document counterparties.
type Contact struct {
	ID   string      `db:"id" json:"id"`
	Name string      `db:"name" json:"name"`
	Type ContactType `db:"type" json:"type"`
}

// Directory resolves counterparties. Sale documents require a client,
// purchase documents require a provider.
type Directory interface {
	Get(ctx context.Context, id string) (*Contact, error)
	// Validate returns ErrNotFound when the contact does not exist and
	// ErrValidation when it exists with the wrong type.
	Validate(ctx context.Context, id string, required ContactType) error
}

package testutil

import (
	"context"

	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/product"
	ierr "github.com/facturio/facturio/internal/errors"
)

// FakeCatalog is a static product catalog for tests.
type FakeCatalog struct {
	Products map[string]*product.Product
}

func NewFakeCatalog(products ...*product.Product) *FakeCatalog {
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &FakeCatalog{Products: byID}
}

func (c *FakeCatalog) Get(_ context.Context, id string) (*product.Product, error) {
	p, ok := c.Products[id]
	if !ok {
		return nil, ierr.NewError("product not found").
			WithReportableDetails(map[string]any{"product_id": id}).
			Mark(ierr.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

// FakeDirectory is a static contact directory for tests.
type FakeDirectory struct {
	Contacts map[string]*contact.Contact
}

func NewFakeDirectory(contacts ...*contact.Contact) *FakeDirectory {
	byID := make(map[string]*contact.Contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}
	return &FakeDirectory{Contacts: byID}
}

func (d *FakeDirectory) Get(_ context.Context, id string) (*contact.Contact, error) {
	c, ok := d.Contacts[id]
	if !ok {
		return nil, ierr.NewError("contact not found").
			WithReportableDetails(map[string]any{"contact_id": id}).
			Mark(ierr.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (d *FakeDirectory) Validate(ctx context.Context, id string, required contact.ContactType) error {
	c, err := d.Get(ctx, id)
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

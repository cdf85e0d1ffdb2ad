package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/facturio/facturio/internal/domain/document"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

type sequenceKey struct {
	tenantID   string
	locationID string
	docType    types.DocumentType
}

// InMemoryDocumentStore is a mutex-guarded document.Repository for tests.
type InMemoryDocumentStore struct {
	mu        sync.Mutex
	documents map[string]*document.Document
	order     []string
	sequences map[sequenceKey]int64
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		documents: make(map[string]*document.Document),
		sequences: make(map[sequenceKey]int64),
	}
}

func (s *InMemoryDocumentStore) Create(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[doc.ID]; ok {
		return ierr.NewError("document already exists").
			WithReportableDetails(map[string]any{"document_id": doc.ID}).
			Mark(ierr.ErrAlreadyExists)
	}
	s.documents[doc.ID] = copyDocument(doc)
	s.order = append(s.order, doc.ID)
	return nil
}

func (s *InMemoryDocumentStore) Get(ctx context.Context, id string) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok || doc.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("document not found").
			WithReportableDetails(map[string]any{"document_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyDocument(doc), nil
}

// GetForUpdate matches Get; the store's single mutex stands in for the row
// lock a SQL implementation takes here.
func (s *InMemoryDocumentStore) GetForUpdate(ctx context.Context, id string) (*document.Document, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryDocumentStore) Update(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.documents[doc.ID]
	if !ok || stored.TenantID != types.GetTenantID(ctx) {
		return ierr.NewError("document not found").
			Mark(ierr.ErrNotFound)
	}
	if !stored.Status.IsEditable() {
		return ierr.NewError("document is not editable").
			Mark(ierr.ErrStateConflict)
	}
	s.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (s *InMemoryDocumentStore) UpdateStatus(ctx context.Context, doc *document.Document, expected types.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.documents[doc.ID]
	if !ok || stored.TenantID != types.GetTenantID(ctx) {
		return ierr.NewError("document not found").
			Mark(ierr.ErrNotFound)
	}
	if stored.Status != expected {
		return ierr.NewError("document status changed concurrently").
			WithReportableDetails(map[string]any{
				"document_id": doc.ID,
				"expected":    expected,
				"actual":      stored.Status,
			}).
			Mark(ierr.ErrStateConflict)
	}
	stored.Status = doc.Status
	stored.Number = doc.Number
	stored.VoidedAt = doc.VoidedAt
	stored.Notes = doc.Notes
	stored.UpdatedAt = doc.UpdatedAt
	stored.UpdatedBy = doc.UpdatedBy
	return nil
}

func (s *InMemoryDocumentStore) List(ctx context.Context, filter *types.DocumentFilter) ([]*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matchLocked(ctx, filter)
	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *InMemoryDocumentStore) Count(ctx context.Context, filter *types.DocumentFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matchLocked(ctx, filter)), nil
}

func (s *InMemoryDocumentStore) matchLocked(ctx context.Context, filter *types.DocumentFilter) []*document.Document {
	tenantID := types.GetTenantID(ctx)
	matched := []*document.Document{}
	for _, id := range s.order {
		doc := s.documents[id]
		if doc.TenantID != tenantID {
			continue
		}
		if filter.DocumentType != nil && doc.DocumentType != *filter.DocumentType {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.CounterpartyID != nil && doc.CounterpartyID != *filter.CounterpartyID {
			continue
		}
		if filter.LocationID != nil && doc.LocationID != *filter.LocationID {
			continue
		}
		if filter.IssuedAfter != nil && doc.IssueDate.Before(*filter.IssuedAfter) {
			continue
		}
		if filter.IssuedBefore != nil && doc.IssueDate.After(*filter.IssuedBefore) {
			continue
		}
		matched = append(matched, copyDocument(doc))
	}
	return matched
}

func (s *InMemoryDocumentStore) NextNumber(ctx context.Context, locationID string, docType types.DocumentType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKey{types.GetTenantID(ctx), locationID, docType}
	s.sequences[key]++
	return fmt.Sprintf("%s%06d", docType.NumberPrefix(), s.sequences[key]), nil
}

func copyDocument(doc *document.Document) *document.Document {
	copied := *doc
	copied.LineItems = make([]*document.LineItem, len(doc.LineItems))
	for i, line := range doc.LineItems {
		lineCopy := *line
		copied.LineItems[i] = &lineCopy
	}
	return &copied
}

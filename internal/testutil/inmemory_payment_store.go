package testutil

import (
	"context"
	"sync"

	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryPaymentStore is a mutex-guarded payment.Repository for tests.
type InMemoryPaymentStore struct {
	mu       sync.Mutex
	payments []*payment.Payment
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *p
	s.payments = append(s.payments, &copied)
	return nil
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.ID == id && p.TenantID == types.GetTenantID(ctx) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ierr.NewError("payment not found").
		WithReportableDetails(map[string]any{"payment_id": id}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPaymentStore) ListByDocument(ctx context.Context, documentID string) ([]*payment.Payment, error) {
	docID := documentID
	return s.List(ctx, &types.PaymentFilter{
		QueryFilter: types.QueryFilter{Limit: intPtr(types.FilterMaxLimit)},
		DocumentID:  &docID,
	})
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
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

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matchLocked(ctx, filter)), nil
}

func (s *InMemoryPaymentStore) matchLocked(ctx context.Context, filter *types.PaymentFilter) []*payment.Payment {
	tenantID := types.GetTenantID(ctx)
	matched := []*payment.Payment{}
	for _, p := range s.payments {
		if p.TenantID != tenantID {
			continue
		}
		if filter.DocumentID != nil && p.DocumentID != *filter.DocumentID {
			continue
		}
		if filter.Method != nil && p.Method != *filter.Method {
			continue
		}
		copied := *p
		matched = append(matched, &copied)
	}
	return matched
}

func (s *InMemoryPaymentStore) SumByDocument(ctx context.Context, documentID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	total := decimal.Zero
	for _, p := range s.payments {
		if p.TenantID == tenantID && p.DocumentID == documentID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

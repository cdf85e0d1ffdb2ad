package testutil

import (
	"context"
	"sync"

	"github.com/facturio/facturio/internal/domain/cashregister"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// InMemoryCashRegisterStore is a mutex-guarded cashregister.Repository for
// tests. The open-per-location check and the insert happen under one lock,
// mirroring the partial unique index of the real implementation.
type InMemoryCashRegisterStore struct {
	mu        sync.Mutex
	registers map[string]*cashregister.Register
	order     []string
	movements []*cashregister.Movement
}

func NewInMemoryCashRegisterStore() *InMemoryCashRegisterStore {
	return &InMemoryCashRegisterStore{
		registers: make(map[string]*cashregister.Register),
	}
}

func (s *InMemoryCashRegisterStore) CreateOpen(ctx context.Context, reg *cashregister.Register) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.registers {
		if existing.TenantID == reg.TenantID &&
			existing.LocationID == reg.LocationID &&
			existing.Status == types.CashRegisterStatusOpen {
			return ierr.NewError("a cash register is already open at this location").
				WithHint("Close the current register before opening a new one").
				WithReportableDetails(map[string]any{"location_id": reg.LocationID}).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	copied := *reg
	s.registers[reg.ID] = &copied
	s.order = append(s.order, reg.ID)
	return nil
}

func (s *InMemoryCashRegisterStore) Get(ctx context.Context, id string) (*cashregister.Register, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registers[id]
	if !ok || reg.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("cash register not found").
			WithReportableDetails(map[string]any{"register_id": id}).
			Mark(ierr.ErrNotFound)
	}
	copied := *reg
	return &copied, nil
}

// GetForUpdate matches Get; the store's single mutex stands in for the row
// lock a SQL implementation takes here.
func (s *InMemoryCashRegisterStore) GetForUpdate(ctx context.Context, id string) (*cashregister.Register, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryCashRegisterStore) GetOpenByLocation(ctx context.Context, locationID string) (*cashregister.Register, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	for _, reg := range s.registers {
		if reg.TenantID == tenantID && reg.LocationID == locationID &&
			reg.Status == types.CashRegisterStatusOpen {
			copied := *reg
			return &copied, nil
		}
	}
	return nil, ierr.NewError("no open cash register at location").
		WithReportableDetails(map[string]any{"location_id": locationID}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryCashRegisterStore) Update(ctx context.Context, reg *cashregister.Register, expected types.CashRegisterStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.registers[reg.ID]
	if !ok || stored.TenantID != types.GetTenantID(ctx) {
		return ierr.NewError("cash register not found").
			Mark(ierr.ErrNotFound)
	}
	if stored.Status != expected {
		return ierr.NewError("cash register status changed concurrently").
			WithReportableDetails(map[string]any{"register_id": reg.ID}).
			Mark(ierr.ErrStateConflict)
	}
	copied := *reg
	s.registers[reg.ID] = &copied
	return nil
}

func (s *InMemoryCashRegisterStore) List(ctx context.Context, filter *types.QueryFilter) ([]*cashregister.Register, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	matched := []*cashregister.Register{}
	for _, id := range s.order {
		reg := s.registers[id]
		if reg.TenantID != tenantID {
			continue
		}
		copied := *reg
		matched = append(matched, &copied)
	}

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

func (s *InMemoryCashRegisterStore) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	count := 0
	for _, reg := range s.registers {
		if reg.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryCashRegisterStore) AddMovement(ctx context.Context, m *cashregister.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registers[m.RegisterID]
	if !ok || reg.TenantID != types.GetTenantID(ctx) {
		return ierr.NewError("cash register not found").
			Mark(ierr.ErrNotFound)
	}
	copied := *m
	s.movements = append(s.movements, &copied)
	return nil
}

func (s *InMemoryCashRegisterStore) ListMovements(ctx context.Context, registerID string) ([]*cashregister.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	matched := []*cashregister.Movement{}
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.RegisterID == registerID {
			copied := *m
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

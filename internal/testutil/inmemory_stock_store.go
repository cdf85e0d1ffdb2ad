package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/facturio/facturio/internal/domain/stock"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

type levelKey struct {
	tenantID   string
	locationID string
	productID  string
}

// InMemoryStockStore is a mutex-guarded stock.Repository for tests. Batches
// are validated before anything is mutated, so ApplyBatch is all-or-nothing
// like the real implementation.
type InMemoryStockStore struct {
	mu        sync.Mutex
	levels    map[levelKey]*stock.Level
	movements []*stock.Movement
}

func NewInMemoryStockStore() *InMemoryStockStore {
	return &InMemoryStockStore{
		levels: make(map[levelKey]*stock.Level),
	}
}

func (s *InMemoryStockStore) Apply(ctx context.Context, in *stock.ApplyInput) (*stock.Movement, error) {
	movements, err := s.ApplyBatch(ctx, []*stock.ApplyInput{in})
	if err != nil {
		return nil, err
	}
	return movements[0], nil
}

func (s *InMemoryStockStore) ApplyBatch(ctx context.Context, ins []*stock.ApplyInput) ([]*stock.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)

	// validate the whole batch against staged quantities first
	staged := map[levelKey]decimal.Decimal{}
	for _, in := range ins {
		if err := in.Validate(); err != nil {
			return nil, err
		}
		key := levelKey{tenantID, in.LocationID, in.ProductID}
		if _, ok := staged[key]; !ok {
			staged[key] = s.quantityLocked(key)
		}
		staged[key] = staged[key].Add(in.Delta)
		if staged[key].IsNegative() {
			return nil, ierr.NewError("insufficient stock").
				WithHint("The movement would drive the stock level negative").
				WithReportableDetails(map[string]any{
					"product_id":  in.ProductID,
					"location_id": in.LocationID,
				}).
				Mark(ierr.ErrInsufficientStock)
		}
		if in.ReferenceDocumentID != nil && s.hasReferenceLocked(tenantID, *in.ReferenceDocumentID, in.ProductID) {
			return nil, ierr.NewError("stock movement already applied for reference").
				WithReportableDetails(map[string]any{
					"product_id": in.ProductID,
					"reference":  *in.ReferenceDocumentID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	movements := make([]*stock.Movement, 0, len(ins))
	now := time.Now().UTC()
	for _, in := range ins {
		key := levelKey{tenantID, in.LocationID, in.ProductID}
		level, ok := s.levels[key]
		if !ok {
			level = &stock.Level{
				TenantID:   tenantID,
				LocationID: in.LocationID,
				ProductID:  in.ProductID,
				Quantity:   decimal.Zero,
			}
			s.levels[key] = level
		}
		level.Quantity = level.Quantity.Add(in.Delta)
		level.UpdatedAt = now

		mov := &stock.Movement{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_STOCK_MOVEMENT),
			ProductID:           in.ProductID,
			LocationID:          in.LocationID,
			Quantity:            in.Delta,
			MovementType:        in.MovementType,
			ReferenceDocumentID: in.ReferenceDocumentID,
			Notes:               in.Notes,
			BaseModel:           types.GetDefaultBaseModel(ctx),
		}
		s.movements = append(s.movements, mov)
		movements = append(movements, mov)
	}
	return movements, nil
}

func (s *InMemoryStockStore) quantityLocked(key levelKey) decimal.Decimal {
	if level, ok := s.levels[key]; ok {
		return level.Quantity
	}
	return decimal.Zero
}

func (s *InMemoryStockStore) hasReferenceLocked(tenantID, reference, productID string) bool {
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.ProductID == productID &&
			m.ReferenceDocumentID != nil && *m.ReferenceDocumentID == reference {
			return true
		}
	}
	return false
}

func (s *InMemoryStockStore) GetLevel(ctx context.Context, locationID, productID string) (*stock.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := levelKey{types.GetTenantID(ctx), locationID, productID}
	if level, ok := s.levels[key]; ok {
		copied := *level
		return &copied, nil
	}
	return &stock.Level{
		TenantID:   types.GetTenantID(ctx),
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   decimal.Zero,
	}, nil
}

func (s *InMemoryStockStore) ListLevelsByProduct(ctx context.Context, productID string) ([]*stock.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	levels := []*stock.Level{}
	for key, level := range s.levels {
		if key.tenantID == tenantID && key.productID == productID {
			copied := *level
			levels = append(levels, &copied)
		}
	}
	return levels, nil
}

func (s *InMemoryStockStore) SetMinQuantity(ctx context.Context, locationID, productID string, min decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := levelKey{types.GetTenantID(ctx), locationID, productID}
	level, ok := s.levels[key]
	if !ok {
		level = &stock.Level{
			TenantID:   key.tenantID,
			LocationID: locationID,
			ProductID:  productID,
			Quantity:   decimal.Zero,
		}
		s.levels[key] = level
	}
	level.MinQuantity = min
	level.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryStockStore) ListMovements(ctx context.Context, filter *types.StockMovementFilter) ([]*stock.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matchMovementsLocked(ctx, filter)

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

func (s *InMemoryStockStore) CountMovements(ctx context.Context, filter *types.StockMovementFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matchMovementsLocked(ctx, filter)), nil
}

func (s *InMemoryStockStore) matchMovementsLocked(ctx context.Context, filter *types.StockMovementFilter) []*stock.Movement {
	tenantID := types.GetTenantID(ctx)
	matched := []*stock.Movement{}
	for _, m := range s.movements {
		if m.TenantID != tenantID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.LocationID != nil && m.LocationID != *filter.LocationID {
			continue
		}
		if filter.Type != nil && m.MovementType != *filter.Type {
			continue
		}
		matched = append(matched, m)
	}
	return matched
}

func intPtr(v int) *int { return &v }

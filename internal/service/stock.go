package service

import (
	"context"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/stock"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// StockService exposes manual inventory operations and the kardex view.
// Document driven movements go through the document and sale flows instead.
type StockService interface {
	AdjustStock(ctx context.Context, req *dto.AdjustStockRequest) (*stock.Movement, error)
	TransferStock(ctx context.Context, req *dto.TransferStockRequest) ([]*stock.Movement, error)
	SetMinQuantity(ctx context.Context, req *dto.SetMinQuantityRequest) error
	GetLevel(ctx context.Context, locationID, productID string) (*dto.StockLevelResponse, error)
	ListLevelsByProduct(ctx context.Context, productID string) ([]*dto.StockLevelResponse, error)
	ListMovements(ctx context.Context, filter *types.StockMovementFilter) (*dto.ListStockMovementsResponse, error)
	GetKardex(ctx context.Context, locationID, productID string, filter *types.QueryFilter) (*dto.KardexResponse, error)
}

type stockService struct {
	ServiceParams
}

func NewStockService(params ServiceParams) StockService {
	return &stockService{ServiceParams: params}
}

func (s *stockService) AdjustStock(ctx context.Context, req *dto.AdjustStockRequest) (*stock.Movement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !types.GetRole(ctx).CanMutate() {
		return nil, ierr.NewError("role cannot adjust stock").
			WithHint("Your role does not allow inventory adjustments").
			Mark(ierr.ErrPermissionDenied)
	}
	mov, err := s.StockRepo.Apply(ctx, &stock.ApplyInput{
		ProductID:    req.ProductID,
		LocationID:   req.LocationID,
		Delta:        req.Delta,
		MovementType: types.StockMovementTypeAdjustment,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("adjusted stock",
		"product_id", req.ProductID,
		"location_id", req.LocationID,
		"delta", req.Delta)
	return mov, nil
}

// TransferStock moves quantity between two locations as a pair of transfer
// movements applied atomically. The source must hold enough stock.
func (s *stockService) TransferStock(ctx context.Context, req *dto.TransferStockRequest) ([]*stock.Movement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	inputs := []*stock.ApplyInput{
		{
			ProductID:    req.ProductID,
			LocationID:   req.FromLocationID,
			Delta:        req.Quantity.Neg(),
			MovementType: types.StockMovementTypeTransfer,
			Notes:        req.Notes,
		},
		{
			ProductID:    req.ProductID,
			LocationID:   req.ToLocationID,
			Delta:        req.Quantity,
			MovementType: types.StockMovementTypeTransfer,
			Notes:        req.Notes,
		},
	}
	var movements []*stock.Movement
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		movements, err = s.StockRepo.ApplyBatch(txCtx, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("transferred stock",
		"product_id", req.ProductID,
		"from_location_id", req.FromLocationID,
		"to_location_id", req.ToLocationID,
		"quantity", req.Quantity)
	return movements, nil
}

func (s *stockService) SetMinQuantity(ctx context.Context, req *dto.SetMinQuantityRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.StockRepo.SetMinQuantity(ctx, req.LocationID, req.ProductID, req.MinQuantity)
}

func (s *stockService) GetLevel(ctx context.Context, locationID, productID string) (*dto.StockLevelResponse, error) {
	level, err := s.StockRepo.GetLevel(ctx, locationID, productID)
	if err != nil {
		return nil, err
	}
	return dto.NewStockLevelResponse(level), nil
}

func (s *stockService) ListLevelsByProduct(ctx context.Context, productID string) ([]*dto.StockLevelResponse, error) {
	levels, err := s.StockRepo.ListLevelsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return lo.Map(levels, func(l *stock.Level, _ int) *dto.StockLevelResponse {
		return dto.NewStockLevelResponse(l)
	}), nil
}

func (s *stockService) ListMovements(ctx context.Context, filter *types.StockMovementFilter) (*dto.ListStockMovementsResponse, error) {
	if filter == nil {
		filter = &types.StockMovementFilter{}
	}
	movements, err := s.StockRepo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.StockRepo.CountMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListStockMovementsResponse{
		Items:      movements,
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// GetKardex returns the chronological movement log of a (location, product)
// with the running balance after each movement, replayed from zero.
func (s *stockService) GetKardex(ctx context.Context, locationID, productID string, filter *types.QueryFilter) (*dto.KardexResponse, error) {
	if locationID == "" || productID == "" {
		return nil, ierr.NewError("location_id and product_id are required").
			WithHint("The kardex is scoped to one product at one location").
			Mark(ierr.ErrValidation)
	}
	if filter == nil {
		filter = &types.QueryFilter{}
	}

	// The full log is replayed in chunks so the running balance stays exact
	// however long the history is.
	entries := []*dto.KardexEntryResponse{}
	balance := decimal.Zero
	for chunkOffset := 0; ; chunkOffset += types.FilterMaxLimit {
		chunk := &types.StockMovementFilter{
			QueryFilter: types.QueryFilter{
				Limit:  lo.ToPtr(types.FilterMaxLimit),
				Offset: lo.ToPtr(chunkOffset),
			},
			ProductID:  &productID,
			LocationID: &locationID,
		}
		movements, err := s.StockRepo.ListMovements(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for _, m := range movements {
			balance = balance.Add(m.Quantity)
			entries = append(entries, &dto.KardexEntryResponse{
				Movement:       m,
				RunningBalance: balance,
			})
		}
		if len(movements) < types.FilterMaxLimit {
			break
		}
	}

	total := len(entries)
	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &dto.KardexResponse{
		Items:      entries[offset:end],
		Pagination: types.NewPaginationResponse(total, limit, filter.GetOffset()),
	}, nil
}

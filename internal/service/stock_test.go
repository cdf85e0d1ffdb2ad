package service

import (
	"context"
	"testing"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/stock"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StockServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	service StockService
}

func TestStockServiceSuite(t *testing.T) {
	suite.Run(t, new(StockServiceSuite))
}

func (s *StockServiceSuite) SetupTest() {
	var params ServiceParams
	params, s.stores = newTestParams()
	s.ctx = testutil.SetupContext()
	s.service = NewStockService(params)
}

func (s *StockServiceSuite) adjust(productID, locationID string, delta int64) {
	_, err := s.service.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  productID,
		LocationID: locationID,
		Delta:      decimal.NewFromInt(delta),
	})
	s.Require().NoError(err)
}

func (s *StockServiceSuite) TestAdjustStock() {
	s.adjust("prod_1", "loc_1", 10)
	s.adjust("prod_1", "loc_1", -4)

	level, err := s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(6)))
}

func (s *StockServiceSuite) TestAdjustBelowZeroRejected() {
	s.adjust("prod_1", "loc_1", 3)

	_, err := s.service.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  "prod_1",
		LocationID: "loc_1",
		Delta:      decimal.NewFromInt(-5),
	})
	s.Error(err)
	s.True(ierr.IsInsufficientStock(err))

	level, err := s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(3)))
}

func (s *StockServiceSuite) TestAdjustZeroDeltaRejected() {
	_, err := s.service.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  "prod_1",
		LocationID: "loc_1",
		Delta:      decimal.Zero,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *StockServiceSuite) TestTransferStock() {
	s.adjust("prod_1", "loc_1", 10)

	movements, err := s.service.TransferStock(s.ctx, &dto.TransferStockRequest{
		ProductID:      "prod_1",
		FromLocationID: "loc_1",
		ToLocationID:   "loc_2",
		Quantity:       decimal.NewFromInt(4),
	})
	s.Require().NoError(err)
	s.Len(movements, 2)

	from, err := s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(from.Quantity.Equal(decimal.NewFromInt(6)))

	to, err := s.service.GetLevel(s.ctx, "loc_2", "prod_1")
	s.Require().NoError(err)
	s.True(to.Quantity.Equal(decimal.NewFromInt(4)))
}

func (s *StockServiceSuite) TestTransferInsufficientSourceLeavesBothUntouched() {
	s.adjust("prod_1", "loc_1", 2)

	_, err := s.service.TransferStock(s.ctx, &dto.TransferStockRequest{
		ProductID:      "prod_1",
		FromLocationID: "loc_1",
		ToLocationID:   "loc_2",
		Quantity:       decimal.NewFromInt(5),
	})
	s.Error(err)
	s.True(ierr.IsInsufficientStock(err))

	from, err := s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(from.Quantity.Equal(decimal.NewFromInt(2)))

	to, err := s.service.GetLevel(s.ctx, "loc_2", "prod_1")
	s.Require().NoError(err)
	s.True(to.Quantity.IsZero())
}

func (s *StockServiceSuite) TestTransferSameLocationRejected() {
	_, err := s.service.TransferStock(s.ctx, &dto.TransferStockRequest{
		ProductID:      "prod_1",
		FromLocationID: "loc_1",
		ToLocationID:   "loc_1",
		Quantity:       decimal.NewFromInt(1),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *StockServiceSuite) TestLowStockFlag() {
	s.adjust("prod_1", "loc_1", 5)
	err := s.service.SetMinQuantity(s.ctx, &dto.SetMinQuantityRequest{
		ProductID:   "prod_1",
		LocationID:  "loc_1",
		MinQuantity: decimal.NewFromInt(10),
	})
	s.Require().NoError(err)

	level, err := s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.IsLow)

	s.adjust("prod_1", "loc_1", 20)
	level, err = s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.False(level.IsLow)
}

func (s *StockServiceSuite) TestKardexRunningBalance() {
	s.adjust("prod_1", "loc_1", 10)
	s.adjust("prod_1", "loc_1", -3)
	s.adjust("prod_1", "loc_1", 7)

	kardex, err := s.service.GetKardex(s.ctx, "loc_1", "prod_1", nil)
	s.Require().NoError(err)
	s.Require().Len(kardex.Items, 3)

	s.True(kardex.Items[0].RunningBalance.Equal(decimal.NewFromInt(10)))
	s.True(kardex.Items[1].RunningBalance.Equal(decimal.NewFromInt(7)))
	s.True(kardex.Items[2].RunningBalance.Equal(decimal.NewFromInt(14)))

	// the final running balance matches the authoritative level (replay invariant)
	level, err := s.service.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(kardex.Items[2].RunningBalance))
}

// The running balance must stay exact past the query page size, and offsets
// beyond it must still resolve.
func (s *StockServiceSuite) TestKardexLongHistory() {
	count := types.FilterMaxLimit + 5
	inputs := make([]*stock.ApplyInput, 0, count)
	for i := 0; i < count; i++ {
		inputs = append(inputs, &stock.ApplyInput{
			ProductID:    "prod_1",
			LocationID:   "loc_1",
			Delta:        decimal.NewFromInt(1),
			MovementType: types.StockMovementTypeAdjustment,
		})
	}
	_, err := s.stores.stock.ApplyBatch(s.ctx, inputs)
	s.Require().NoError(err)

	kardex, err := s.service.GetKardex(s.ctx, "loc_1", "prod_1", &types.QueryFilter{
		Offset: lo.ToPtr(types.FilterMaxLimit),
		Limit:  lo.ToPtr(10),
	})
	s.Require().NoError(err)
	s.Equal(count, kardex.Pagination.Total)
	s.Require().Len(kardex.Items, 5)
	s.True(kardex.Items[0].RunningBalance.Equal(decimal.NewFromInt(int64(types.FilterMaxLimit+1))))
	s.True(kardex.Items[4].RunningBalance.Equal(decimal.NewFromInt(int64(count))))
}

func (s *StockServiceSuite) TestLevelsByProduct() {
	s.adjust("prod_1", "loc_1", 3)
	s.adjust("prod_1", "loc_2", 8)

	levels, err := s.service.ListLevelsByProduct(s.ctx, "prod_1")
	s.Require().NoError(err)
	s.Len(levels, 2)
}

func (s *StockServiceSuite) TestMovementTenantIsolation() {
	s.adjust("prod_1", "loc_1", 3)

	otherCtx := testutil.SetupContextWith("tenant_other", "user_other", types.RoleAdmin)
	list, err := s.service.ListMovements(otherCtx, &types.StockMovementFilter{
		ProductID: lo.ToPtr("prod_1"),
	})
	s.Require().NoError(err)
	s.Empty(list.Items)
}

package service

import (
	"context"
	"testing"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type POSServiceSuite struct {
	suite.Suite
	ctx       context.Context
	stores    *testStores
	service   POSService
	registers CashRegisterService
	stock     StockService
	documents DocumentService
}

func TestPOSServiceSuite(t *testing.T) {
	suite.Run(t, new(POSServiceSuite))
}

func (s *POSServiceSuite) SetupTest() {
	var params ServiceParams
	params, s.stores = newTestParams()
	s.ctx = testutil.SetupContext()
	s.service = NewPOSService(params)
	s.registers = NewCashRegisterService(params)
	s.stock = NewStockService(params)
	s.documents = NewDocumentService(params)
}

func (s *POSServiceSuite) openRegister(balance int64) *dto.RegisterResponse {
	reg, err := s.registers.OpenRegister(s.ctx, &dto.OpenRegisterRequest{
		LocationID:     "loc_1",
		OpeningBalance: decimal.NewFromInt(balance),
	})
	s.Require().NoError(err)
	return reg
}

func (s *POSServiceSuite) seedStock(productID string, qty int64) {
	_, err := s.stock.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  productID,
		LocationID: "loc_1",
		Delta:      decimal.NewFromInt(qty),
	})
	s.Require().NoError(err)
}

// TestCashSaleWithChange runs the full flow: opening balance 100000, a sale
// of 47000 tendered with 50000 cash. Expected: stock out, payment recorded,
// document paid, SALE +50000 and WITHDRAWAL -3000 movements, balance 147000.
func (s *POSServiceSuite) TestCashSaleWithChange() {
	reg := s.openRegister(100000)
	s.seedStock("prod_2", 5)

	resp, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(50000)},
		},
	})
	s.Require().NoError(err)

	s.Equal(types.DocumentStatusPaid, resp.Document.Status)
	s.Equal(types.DocumentSourcePOS, resp.Document.Source)
	s.Equal("F-000001", lo.FromPtr(resp.Document.Number))
	s.True(resp.Document.TotalAmount.Equal(decimal.NewFromInt(47000)))
	s.True(resp.Change.Equal(decimal.NewFromInt(3000)))
	s.Equal(reg.ID, resp.RegisterID)

	s.Require().Len(resp.Payments, 1)
	s.True(resp.Payments[0].Amount.Equal(decimal.NewFromInt(50000)))

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_2")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(4)))

	snapshot, err := s.registers.GetSnapshot(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.True(snapshot.Summary[types.CashMovementTypeSale].Equal(decimal.NewFromInt(50000)))
	s.True(snapshot.Summary[types.CashMovementTypeWithdrawal].Equal(decimal.NewFromInt(-3000)))
	s.True(snapshot.ComputedBalance.Equal(decimal.NewFromInt(147000)), snapshot.ComputedBalance.String())
}

func (s *POSServiceSuite) TestExactCashSaleNoWithdrawal() {
	reg := s.openRegister(10000)
	s.seedStock("prod_2", 2)

	resp, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(47000)},
		},
	})
	s.Require().NoError(err)
	s.True(resp.Change.IsZero())

	movements, err := s.stores.cashRegisters.ListMovements(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Require().Len(movements, 1)
	s.Equal(types.CashMovementTypeSale, movements[0].Type)
}

func (s *POSServiceSuite) TestNoOpenRegisterRejected() {
	s.seedStock("prod_2", 5)

	_, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(47000)},
		},
	})
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *POSServiceSuite) TestInsufficientStockLeavesNoTrace() {
	reg := s.openRegister(10000)
	s.seedStock("prod_2", 3)

	_, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(5)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(235000)},
		},
	})
	s.Error(err)
	s.True(ierr.IsInsufficientStock(err))

	// no document, stock, payment or cash effect persists
	docs, err := s.documents.ListDocuments(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(docs.Items)

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_2")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(3)))

	movements, err := s.stores.cashRegisters.ListMovements(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Empty(movements)
}

func (s *POSServiceSuite) TestInsufficientPaymentRejected() {
	s.openRegister(10000)
	s.seedStock("prod_2", 5)

	_, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(40000)},
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	docs, err := s.documents.ListDocuments(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(docs.Items)
}

func (s *POSServiceSuite) TestNonCashOverpaymentRejected() {
	s.openRegister(10000)
	s.seedStock("prod_2", 5)

	_, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCard, Amount: decimal.NewFromInt(50000)},
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *POSServiceSuite) TestMixedPaymentMethods() {
	reg := s.openRegister(10000)
	s.seedStock("prod_2", 5)

	resp, err := s.service.ProcessSale(s.ctx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCard, Amount: decimal.NewFromInt(40000)},
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(10000)},
		},
	})
	s.Require().NoError(err)
	s.True(resp.Change.Equal(decimal.NewFromInt(3000)))
	s.Equal(types.DocumentStatusPaid, resp.Document.Status)

	// only the cash leg reaches the register
	snapshot, err := s.registers.GetSnapshot(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.True(snapshot.Summary[types.CashMovementTypeSale].Equal(decimal.NewFromInt(10000)))
	s.True(snapshot.Summary[types.CashMovementTypeWithdrawal].Equal(decimal.NewFromInt(-3000)))
}

func (s *POSServiceSuite) TestCashierCanSell() {
	s.openRegister(10000)
	s.seedStock("prod_2", 5)

	cashierCtx := testutil.SetupContextWith(testutil.TestTenantID, "user_cashier", types.RoleCashier)
	resp, err := s.service.ProcessSale(cashierCtx, &dto.ProcessSaleRequest{
		LocationID:     "loc_1",
		CounterpartyID: "client_1",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod_2", Quantity: decimal.NewFromInt(1)},
		},
		Payments: []dto.SalePaymentRequest{
			{Method: types.PaymentMethodCash, Amount: decimal.NewFromInt(47000)},
		},
	})
	s.Require().NoError(err)
	s.Equal("user_cashier", resp.Document.CreatedBy)
}

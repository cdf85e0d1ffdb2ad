package service

import (
	"context"
	"sync"
	"testing"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DocumentServiceSuite struct {
	suite.Suite
	ctx     context.Context
	params  ServiceParams
	stores  *testStores
	service DocumentService
	stock   StockService
}

func TestDocumentServiceSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.params, s.stores = newTestParams()
	s.service = NewDocumentService(s.params)
	s.stock = NewStockService(s.params)
}

func (s *DocumentServiceSuite) seedStock(productID string, qty int64) {
	_, err := s.stock.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  productID,
		LocationID: "loc_1",
		Delta:      decimal.NewFromInt(qty),
	})
	s.Require().NoError(err)
}

func (s *DocumentServiceSuite) createSaleDraft(qty int64) *dto.DocumentResponse {
	resp, err := s.service.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "client_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(qty)},
		},
	})
	s.Require().NoError(err)
	return resp
}

func (s *DocumentServiceSuite) TestCreateDocumentComputesTotals() {
	resp := s.createSaleDraft(2)

	s.Equal(types.DocumentStatusDraft, resp.Status)
	s.Equal(types.DocumentSourceManual, resp.Source)
	s.Nil(resp.Number)

	// 2 x 100.00 = 200.00, 13% VAT = 26.00
	s.True(resp.Subtotal.Equal(decimal.NewFromInt(200)), resp.Subtotal.String())
	s.True(resp.TaxesTotal.Equal(decimal.NewFromInt(26)), resp.TaxesTotal.String())
	s.True(resp.TotalAmount.Equal(decimal.NewFromInt(226)), resp.TotalAmount.String())

	s.Require().Len(resp.LineItems, 1)
	s.Equal("Standard Widget", resp.LineItems[0].Name)
	s.Equal("WID-001", resp.LineItems[0].SKU)
}

func (s *DocumentServiceSuite) TestCreateDocumentRejectsWrongCounterpartyType() {
	_, err := s.service.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "provider_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(1)},
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DocumentServiceSuite) TestCreateDocumentRejectsUnknownProduct() {
	_, err := s.service.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "client_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_missing", Quantity: decimal.NewFromInt(1)},
		},
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *DocumentServiceSuite) TestConfirmSaleDeductsStockAndAssignsNumber() {
	s.seedStock("prod_1", 10)
	draft := s.createSaleDraft(3)

	confirmed, err := s.service.ConfirmDocument(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusOpen, confirmed.Status)
	s.Equal("F-000001", lo.FromPtr(confirmed.Number))

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(7)), level.Quantity.String())

	movements, err := s.stores.stock.ListMovements(s.ctx, &types.StockMovementFilter{
		ProductID: lo.ToPtr("prod_1"),
		Type:      lo.ToPtr(types.StockMovementTypeOut),
	})
	s.Require().NoError(err)
	s.Require().Len(movements, 1)
	s.Equal(draft.ID, lo.FromPtr(movements[0].ReferenceDocumentID))
	s.True(movements[0].Quantity.Equal(decimal.NewFromInt(-3)))
}

func (s *DocumentServiceSuite) TestConfirmPurchaseAddsStock() {
	resp, err := s.service.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypePurchase,
		CounterpartyID: "provider_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(5)},
		},
	})
	s.Require().NoError(err)

	confirmed, err := s.service.ConfirmDocument(s.ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal("B-000001", lo.FromPtr(confirmed.Number))

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(5)))
}

func (s *DocumentServiceSuite) TestConfirmInsufficientStockKeepsDraft() {
	s.seedStock("prod_1", 3)
	draft := s.createSaleDraft(5)

	_, err := s.service.ConfirmDocument(s.ctx, draft.ID)
	s.Error(err)
	s.True(ierr.IsInsufficientStock(err))

	stored, err := s.service.GetDocument(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusDraft, stored.Status)

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(3)))

	movements, err := s.stores.stock.ListMovements(s.ctx, &types.StockMovementFilter{
		Type: lo.ToPtr(types.StockMovementTypeOut),
	})
	s.Require().NoError(err)
	s.Empty(movements)
}

func (s *DocumentServiceSuite) TestReconfirmRejected() {
	s.seedStock("prod_1", 10)
	draft := s.createSaleDraft(2)

	_, err := s.service.ConfirmDocument(s.ctx, draft.ID)
	s.Require().NoError(err)

	_, err = s.service.ConfirmDocument(s.ctx, draft.ID)
	s.Error(err)
	s.True(ierr.IsStateConflict(err))

	// stock deducted exactly once
	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(8)))
}

func (s *DocumentServiceSuite) TestConcurrentConfirmsNeverOversell() {
	s.seedStock("prod_1", 3)
	first := s.createSaleDraft(2)
	second := s.createSaleDraft(2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = s.service.ConfirmDocument(s.ctx, id)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientStock(err))
		}
	}
	s.Equal(1, succeeded)

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(1)), level.Quantity.String())
}

func (s *DocumentServiceSuite) TestVoidRequiresElevatedRole() {
	draft := s.createSaleDraft(1)

	cashierCtx := testutil.SetupContextWith(testutil.TestTenantID, "user_cashier", types.RoleCashier)
	_, err := s.service.VoidDocument(cashierCtx, draft.ID, "mistake")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	voided, err := s.service.VoidDocument(s.ctx, draft.ID, "mistake")
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusVoid, voided.Status)
	s.NotNil(voided.VoidedAt)
}

func (s *DocumentServiceSuite) TestVoidDoesNotReverseStock() {
	s.seedStock("prod_1", 10)
	draft := s.createSaleDraft(4)
	_, err := s.service.ConfirmDocument(s.ctx, draft.ID)
	s.Require().NoError(err)

	_, err = s.service.VoidDocument(s.ctx, draft.ID, "cancelled")
	s.Require().NoError(err)

	level, err := s.stores.stock.GetLevel(s.ctx, "loc_1", "prod_1")
	s.Require().NoError(err)
	s.True(level.Quantity.Equal(decimal.NewFromInt(6)))
}

func (s *DocumentServiceSuite) TestVoidTerminalStatesRejected() {
	draft := s.createSaleDraft(1)
	_, err := s.service.VoidDocument(s.ctx, draft.ID, "first")
	s.Require().NoError(err)

	_, err = s.service.VoidDocument(s.ctx, draft.ID, "again")
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *DocumentServiceSuite) TestUpdateDraftOnly() {
	s.seedStock("prod_1", 10)
	draft := s.createSaleDraft(1)

	updated, err := s.service.UpdateDraft(s.ctx, draft.ID, &dto.UpdateDocumentRequest{
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(3)},
		},
	})
	s.Require().NoError(err)
	s.True(updated.TotalAmount.Equal(decimal.NewFromInt(339)), updated.TotalAmount.String())

	_, err = s.service.ConfirmDocument(s.ctx, draft.ID)
	s.Require().NoError(err)

	_, err = s.service.UpdateDraft(s.ctx, draft.ID, &dto.UpdateDocumentRequest{
		Notes: lo.ToPtr("too late"),
	})
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *DocumentServiceSuite) TestTenantIsolation() {
	draft := s.createSaleDraft(1)

	otherCtx := testutil.SetupContextWith("tenant_other", "user_other", types.RoleAdmin)
	_, err := s.service.GetDocument(otherCtx, draft.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	list, err := s.service.ListDocuments(otherCtx, nil)
	s.Require().NoError(err)
	s.Empty(list.Items)
}

func (s *DocumentServiceSuite) TestListDocumentsFilters() {
	s.createSaleDraft(1)
	s.createSaleDraft(2)

	list, err := s.service.ListDocuments(s.ctx, &types.DocumentFilter{
		DocumentType: lo.ToPtr(types.DocumentTypeSale),
		Status:       lo.ToPtr(types.DocumentStatusDraft),
	})
	s.Require().NoError(err)
	s.Len(list.Items, 2)
	s.Equal(2, list.Pagination.Total)

	list, err = s.service.ListDocuments(s.ctx, &types.DocumentFilter{
		DocumentType: lo.ToPtr(types.DocumentTypePurchase),
	})
	s.Require().NoError(err)
	s.Empty(list.Items)
}

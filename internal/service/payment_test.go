package service

import (
	"context"
	"testing"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	suite.Suite
	ctx       context.Context
	params    ServiceParams
	stores    *testStores
	service   PaymentService
	documents DocumentService
	stock     StockService
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.params, s.stores = newTestParams()
	s.ctx = testutil.SetupContext()
	s.service = NewPaymentService(s.params)
	s.documents = NewDocumentService(s.params)
	s.stock = NewStockService(s.params)
}

// lockHookDocumentStore fires a one-shot callback when the document row lock
// is taken, standing in for a writer that committed while this transaction
// waited on the lock.
type lockHookDocumentStore struct {
	document.Repository
	onGetForUpdate func()
}

func (s *lockHookDocumentStore) GetForUpdate(ctx context.Context, id string) (*document.Document, error) {
	if s.onGetForUpdate != nil {
		hook := s.onGetForUpdate
		s.onGetForUpdate = nil
		hook()
	}
	return s.Repository.GetForUpdate(ctx, id)
}

// openSaleDocument creates and confirms a sale for 2 x 100.00 + 13% VAT = 226.00
func (s *PaymentServiceSuite) openSaleDocument() string {
	_, err := s.stock.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  "prod_1",
		LocationID: "loc_1",
		Delta:      decimal.NewFromInt(10),
	})
	s.Require().NoError(err)

	draft, err := s.documents.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "client_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(2)},
		},
	})
	s.Require().NoError(err)

	_, err = s.documents.ConfirmDocument(s.ctx, draft.ID)
	s.Require().NoError(err)
	return draft.ID
}

func (s *PaymentServiceSuite) TestPartialThenPaid() {
	docID := s.openSaleDocument()

	first, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(100),
		Method:     types.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusPartial, first.DocumentStatus)
	s.True(first.PaidTotal.Equal(decimal.NewFromInt(100)))

	second, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(126),
		Method:     types.PaymentMethodTransfer,
	})
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusPaid, second.DocumentStatus)
	s.True(second.PaidTotal.Equal(decimal.NewFromInt(226)))
}

func (s *PaymentServiceSuite) TestOverpaymentRecordedAsIs() {
	docID := s.openSaleDocument()

	resp, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(300),
		Method:     types.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusPaid, resp.DocumentStatus)
	s.True(resp.PaidTotal.Equal(decimal.NewFromInt(300)))
}

// A payment committed by another writer while this one waits on the document
// lock must be included in the paid sum, so the second of two concurrent
// payments that together cover the total moves the document to paid.
func (s *PaymentServiceSuite) TestPaymentCommittedWhileLockedIsSummed() {
	docID := s.openSaleDocument()

	first, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(30),
		Method:     types.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusPartial, first.DocumentStatus)

	params := s.params
	params.DocumentRepo = &lockHookDocumentStore{
		Repository: s.params.DocumentRepo,
		onGetForUpdate: func() {
			concurrent := &payment.Payment{
				ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
				DocumentID:  docID,
				Amount:      decimal.NewFromInt(100),
				Method:      types.PaymentMethodCash,
				PaymentDate: time.Now().UTC(),
				BaseModel:   types.GetDefaultBaseModel(s.ctx),
			}
			s.Require().NoError(s.stores.payments.Create(s.ctx, concurrent))
		},
	}

	resp, err := NewPaymentService(params).AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(100),
		Method:     types.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.True(resp.PaidTotal.Equal(decimal.NewFromInt(230)))
	s.Equal(types.DocumentStatusPaid, resp.DocumentStatus)

	doc, err := s.stores.documents.Get(s.ctx, docID)
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusPaid, doc.Status)
}

func (s *PaymentServiceSuite) TestZeroTotalDocumentPaidByFirstPayment() {
	_, err := s.stock.AdjustStock(s.ctx, &dto.AdjustStockRequest{
		ProductID:  "prod_1",
		LocationID: "loc_1",
		Delta:      decimal.NewFromInt(1),
	})
	s.Require().NoError(err)

	draft, err := s.documents.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "client_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(1), UnitPrice: lo.ToPtr(decimal.Zero)},
		},
	})
	s.Require().NoError(err)
	s.True(draft.TotalAmount.IsZero())

	_, err = s.documents.ConfirmDocument(s.ctx, draft.ID)
	s.Require().NoError(err)

	resp, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: draft.ID,
		Amount:     decimal.NewFromInt(10),
		Method:     types.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.Equal(types.DocumentStatusPaid, resp.DocumentStatus)
	s.True(resp.PaidTotal.Equal(decimal.NewFromInt(10)))
}

func (s *PaymentServiceSuite) TestDraftRejectsPayments() {
	draft, err := s.documents.CreateDocument(s.ctx, &dto.CreateDocumentRequest{
		DocumentType:   types.DocumentTypeSale,
		CounterpartyID: "client_1",
		LocationID:     "loc_1",
		LineItems: []dto.CreateLineItemRequest{
			{ProductID: "prod_1", Quantity: decimal.NewFromInt(1)},
		},
	})
	s.Require().NoError(err)

	_, err = s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: draft.ID,
		Amount:     decimal.NewFromInt(50),
		Method:     types.PaymentMethodCash,
	})
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *PaymentServiceSuite) TestPaidDocumentRejectsFurtherPayments() {
	docID := s.openSaleDocument()

	_, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(226),
		Method:     types.PaymentMethodCard,
	})
	s.Require().NoError(err)

	_, err = s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(10),
		Method:     types.PaymentMethodCash,
	})
	s.Error(err)
	s.True(ierr.IsStateConflict(err))
}

func (s *PaymentServiceSuite) TestNonPositiveAmountRejected() {
	docID := s.openSaleDocument()

	_, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.Zero,
		Method:     types.PaymentMethodCash,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestListByDocument() {
	docID := s.openSaleDocument()

	_, err := s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(100),
		Method:     types.PaymentMethodCash,
	})
	s.Require().NoError(err)
	_, err = s.service.AddPayment(s.ctx, &dto.AddPaymentRequest{
		DocumentID: docID,
		Amount:     decimal.NewFromInt(50),
		Method:     types.PaymentMethodCard,
	})
	s.Require().NoError(err)

	payments, err := s.service.ListByDocument(s.ctx, docID)
	s.Require().NoError(err)
	s.Len(payments, 2)

	cashOnly, err := s.service.ListPayments(s.ctx, &types.PaymentFilter{
		DocumentID: &docID,
		Method:     lo.ToPtr(types.PaymentMethodCash),
	})
	s.Require().NoError(err)
	s.Len(cashOnly.Items, 1)
}

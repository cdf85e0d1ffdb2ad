package service

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PaymentService appends payments to open documents and recomputes the
// document status from the cumulative paid amount.
type PaymentService interface {
	AddPayment(ctx context.Context, req *dto.AddPaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
	ListByDocument(ctx context.Context, documentID string) ([]*payment.Payment, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

// AddPayment records one payment and moves the document to partial or paid.
// The payment row and the status change commit together or not at all. The
// document row is locked before the paid sum is taken, so concurrent payments
// on the same document serialize and each one sees every payment committed
// before it.
func (s *paymentService) AddPayment(ctx context.Context, req *dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &payment.Payment{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		DocumentID:  req.DocumentID,
		Amount:      types.RoundAmount(req.Amount),
		Method:      req.Method,
		Reference:   req.Reference,
		PaymentDate: lo.FromPtrOr(req.PaymentDate, time.Now().UTC()),
		Notes:       req.Notes,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var doc *document.Document
	var paidTotal decimal.Decimal
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.DocumentRepo.GetForUpdate(txCtx, req.DocumentID)
		if err != nil {
			return err
		}
		if !doc.Status.AcceptsPayments() {
			return ierr.NewError("document does not accept payments").
				WithHint("Only open and partially paid documents accept payments").
				WithReportableDetails(map[string]any{
					"document_id": doc.ID,
					"status":      doc.Status,
				}).
				Mark(ierr.ErrStateConflict)
		}
		if err := s.PaymentRepo.Create(txCtx, p); err != nil {
			return err
		}
		paidTotal, err = s.PaymentRepo.SumByDocument(txCtx, doc.ID)
		if err != nil {
			return err
		}
		next := payment.ComputeDocumentStatus(doc.Status, doc.TotalAmount, paidTotal)
		if next == doc.Status {
			return nil
		}
		expected := doc.Status
		doc.Status = next
		doc.UpdatedAt = time.Now().UTC()
		doc.UpdatedBy = types.GetUserID(txCtx)
		return s.DocumentRepo.UpdateStatus(txCtx, doc, expected)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("added payment",
		"payment_id", p.ID,
		"document_id", doc.ID,
		"amount", p.Amount,
		"document_status", doc.Status)
	return &dto.PaymentResponse{
		Payment:        p,
		DocumentStatus: doc.Status,
		PaidTotal:      paidTotal,
	}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return s.PaymentRepo.Get(ctx, id)
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = &types.PaymentFilter{}
	}
	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListPaymentsResponse{
		Items:      payments,
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *paymentService) ListByDocument(ctx context.Context, documentID string) ([]*payment.Payment, error) {
	return s.PaymentRepo.ListByDocument(ctx, documentID)
}

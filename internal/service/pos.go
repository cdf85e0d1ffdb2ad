package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/cashregister"
	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// POSService composes documents, stock, payments and the cash register into
// one atomic sale. A failed sale leaves no document, movement, payment or
// cash effect behind.
type POSService interface {
	ProcessSale(ctx context.Context, req *dto.ProcessSaleRequest) (*dto.ProcessSaleResponse, error)
}

type posService struct {
	ServiceParams
}

func NewPOSService(params ServiceParams) POSService {
	return &posService{ServiceParams: params}
}

func (s *posService) ProcessSale(ctx context.Context, req *dto.ProcessSaleRequest) (*dto.ProcessSaleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !types.GetRole(ctx).CanMutate() {
		return nil, ierr.NewError("role cannot process sales").
			Mark(ierr.ErrPermissionDenied)
	}

	reg, err := s.CashRegisterRepo.GetOpenByLocation(ctx, req.LocationID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no open cash register at location").
				WithHint("Open a cash register before processing sales").
				WithReportableDetails(map[string]any{"location_id": req.LocationID}).
				Mark(ierr.ErrStateConflict)
		}
		return nil, err
	}
	if err := s.Directory.Validate(ctx, req.CounterpartyID, contact.ContactTypeClient); err != nil {
		return nil, err
	}

	doc := &document.Document{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		DocumentType:   types.DocumentTypeSale,
		Source:         types.DocumentSourcePOS,
		Status:         types.DocumentStatusDraft,
		CounterpartyID: req.CounterpartyID,
		LocationID:     req.LocationID,
		IssueDate:      time.Now().UTC(),
		Notes:          req.Notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	docSvc := &documentService{ServiceParams: s.ServiceParams}
	lineReqs := make([]dto.CreateLineItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		lineReqs = append(lineReqs, dto.CreateLineItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	lines, err := docSvc.buildLineItems(ctx, doc.ID, lineReqs)
	if err != nil {
		return nil, err
	}
	doc.LineItems = lines
	doc.ComputeTotals()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	change, err := validateSalePayments(doc.TotalAmount, req.Payments)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, doc); err != nil {
		return nil, err
	}

	var payments []*payment.Payment
	operation := func() error {
		payments, err = s.commitSale(ctx, doc, reg, req.Payments, change)
		if err != nil {
			if ierr.IsTransientConflict(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), confirmMaxRetries-1)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	s.Logger.Infow("processed sale",
		"document_id", doc.ID,
		"register_id", reg.ID,
		"total_amount", doc.TotalAmount,
		"change", change)
	return &dto.ProcessSaleResponse{
		Document:   &dto.DocumentResponse{Document: doc},
		Payments:   payments,
		Change:     change,
		RegisterID: reg.ID,
	}, nil
}

// commitSale runs steps 2 through 6 of the sale inside one transaction:
// create and confirm the document, apply stock, record payments, write the
// register movements and the change withdrawal.
func (s *posService) commitSale(
	ctx context.Context,
	doc *document.Document,
	reg *cashregister.Register,
	paymentReqs []dto.SalePaymentRequest,
	change decimal.Decimal,
) ([]*payment.Payment, error) {
	var payments []*payment.Payment

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		locked, err := s.CashRegisterRepo.GetForUpdate(txCtx, reg.ID)
		if err != nil {
			return err
		}
		if !locked.IsOpen() {
			return ierr.NewError("cash register closed during sale").
				WithHint("Open a cash register before processing sales").
				WithReportableDetails(map[string]any{"register_id": reg.ID}).
				Mark(ierr.ErrStateConflict)
		}

		doc.Status = types.DocumentStatusDraft
		if err := s.DocumentRepo.Create(txCtx, doc); err != nil {
			return err
		}
		number, err := s.DocumentRepo.NextNumber(txCtx, doc.LocationID, doc.DocumentType)
		if err != nil {
			return err
		}
		doc.Number = &number

		if _, err := s.StockRepo.ApplyBatch(txCtx, stockInputsForDocument(doc)); err != nil {
			return err
		}
		doc.Status = types.DocumentStatusOpen
		if err := s.DocumentRepo.UpdateStatus(txCtx, doc, types.DocumentStatusDraft); err != nil {
			return err
		}

		payments = payments[:0]
		paidTotal := decimal.Zero
		for _, pr := range paymentReqs {
			p := &payment.Payment{
				ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
				DocumentID:  doc.ID,
				Amount:      types.RoundAmount(pr.Amount),
				Method:      pr.Method,
				Reference:   pr.Reference,
				PaymentDate: time.Now().UTC(),
				BaseModel:   types.GetDefaultBaseModel(txCtx),
			}
			if err := s.PaymentRepo.Create(txCtx, p); err != nil {
				return err
			}
			payments = append(payments, p)
			paidTotal = paidTotal.Add(p.Amount)
		}

		next := payment.ComputeDocumentStatus(doc.Status, doc.TotalAmount, paidTotal)
		if next != doc.Status {
			expected := doc.Status
			doc.Status = next
			if err := s.DocumentRepo.UpdateStatus(txCtx, doc, expected); err != nil {
				return err
			}
		}

		for _, p := range payments {
			if p.Method != types.PaymentMethodCash {
				continue
			}
			m := &cashregister.Movement{
				ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASH_MOVEMENT),
				RegisterID: reg.ID,
				Type:       types.CashMovementTypeSale,
				Amount:     p.Amount,
				Reference:  p.ID,
				DocumentID: &doc.ID,
				BaseModel:  types.GetDefaultBaseModel(txCtx),
			}
			if err := s.CashRegisterRepo.AddMovement(txCtx, m); err != nil {
				return err
			}
		}
		if change.IsPositive() {
			m := &cashregister.Movement{
				ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASH_MOVEMENT),
				RegisterID: reg.ID,
				Type:       types.CashMovementTypeWithdrawal,
				Amount:     change,
				Notes:      "change returned",
				DocumentID: &doc.ID,
				BaseModel:  types.GetDefaultBaseModel(txCtx),
			}
			if err := s.CashRegisterRepo.AddMovement(txCtx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// validateSalePayments checks that the tendered payments cover the total and
// that any excess is tendered in cash. The excess is the change due.
func validateSalePayments(total decimal.Decimal, reqs []dto.SalePaymentRequest) (decimal.Decimal, error) {
	paid := decimal.Zero
	nonCash := decimal.Zero
	for _, pr := range reqs {
		amount := types.RoundAmount(pr.Amount)
		paid = paid.Add(amount)
		if pr.Method != types.PaymentMethodCash {
			nonCash = nonCash.Add(amount)
		}
	}
	if paid.LessThan(total) {
		return decimal.Zero, ierr.NewError("payments do not cover the sale total").
			WithHint("The tendered payments must cover the document total").
			WithReportableDetails(map[string]any{
				"total": total.String(),
				"paid":  paid.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if nonCash.GreaterThan(total) {
		return decimal.Zero, ierr.NewError("non-cash payments exceed the sale total").
			WithHint("Change can only be returned on cash payments").
			WithReportableDetails(map[string]any{
				"total":    total.String(),
				"non_cash": nonCash.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return paid.Sub(total), nil
}

// checkAvailability verifies on-hand stock for every line before any state
// is created. The authoritative check still happens when stock is applied.
func (s *posService) checkAvailability(ctx context.Context, doc *document.Document) error {
	needed := map[string]decimal.Decimal{}
	for _, line := range doc.LineItems {
		needed[line.ProductID] = needed[line.ProductID].Add(line.Quantity)
	}
	for productID, qty := range needed {
		level, err := s.StockRepo.GetLevel(ctx, doc.LocationID, productID)
		if err != nil {
			return err
		}
		if level.Quantity.LessThan(qty) {
			return ierr.NewError("insufficient stock for sale").
				WithHint("Not enough stock is available at the location").
				WithReportableDetails(map[string]any{
					"product_id":  productID,
					"location_id": doc.LocationID,
					"requested":   qty.String(),
					"available":   level.Quantity.String(),
				}).
				Mark(ierr.ErrInsufficientStock)
		}
	}
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/contact"
	"github.com/facturio/facturio/internal/domain/document"
	"github.com/facturio/facturio/internal/domain/stock"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const confirmMaxRetries = 3

// DocumentService owns the document lifecycle: draft creation and editing,
// confirmation (numbering plus stock application) and voiding.
type DocumentService interface {
	CreateDocument(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	UpdateDraft(ctx context.Context, id string, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	ConfirmDocument(ctx context.Context, id string) (*dto.DocumentResponse, error)
	VoidDocument(ctx context.Context, id string, reason string) (*dto.DocumentResponse, error)
	GetDocument(ctx context.Context, id string) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, filter *types.DocumentFilter) (*dto.ListDocumentsResponse, error)
}

type documentService struct {
	ServiceParams
}

func NewDocumentService(params ServiceParams) DocumentService {
	return &documentService{ServiceParams: params}
}

func (s *documentService) CreateDocument(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.Directory.Validate(ctx, req.CounterpartyID, counterpartyType(req.DocumentType)); err != nil {
		return nil, err
	}

	doc := &document.Document{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		DocumentType:   req.DocumentType,
		Source:         types.DocumentSourceManual,
		Status:         types.DocumentStatusDraft,
		CounterpartyID: req.CounterpartyID,
		LocationID:     req.LocationID,
		IssueDate:      lo.FromPtrOr(req.IssueDate, time.Now().UTC()),
		DueDate:        req.DueDate,
		Currency:       req.Currency,
		Notes:          req.Notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	lines, err := s.buildLineItems(ctx, doc.ID, req.LineItems)
	if err != nil {
		return nil, err
	}
	doc.LineItems = lines
	doc.ComputeTotals()

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := s.DocumentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.Logger.Infow("created document",
		"document_id", doc.ID,
		"document_type", doc.DocumentType,
		"total_amount", doc.TotalAmount)
	return &dto.DocumentResponse{Document: doc}, nil
}

func (s *documentService) UpdateDraft(ctx context.Context, id string, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.IsEditable() {
		return nil, ierr.NewError("document is not editable").
			WithHint("Only draft documents can be edited").
			WithReportableDetails(map[string]any{
				"document_id": id,
				"status":      doc.Status,
			}).
			Mark(ierr.ErrStateConflict)
	}

	if req.CounterpartyID != nil {
		if err := s.Directory.Validate(ctx, *req.CounterpartyID, counterpartyType(doc.DocumentType)); err != nil {
			return nil, err
		}
		doc.CounterpartyID = *req.CounterpartyID
	}
	if req.IssueDate != nil {
		doc.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		doc.DueDate = req.DueDate
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if len(req.LineItems) > 0 {
		lines, err := s.buildLineItems(ctx, doc.ID, req.LineItems)
		if err != nil {
			return nil, err
		}
		doc.LineItems = lines
	}
	doc.ComputeTotals()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()
	doc.UpdatedBy = types.GetUserID(ctx)

	if err := s.DocumentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return &dto.DocumentResponse{Document: doc}, nil
}

// ConfirmDocument takes a draft to open: it assigns the next document number
// and applies the stock effect of every line in one transaction. Concurrent
// confirmations of the same document succeed exactly once.
func (s *documentService) ConfirmDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var doc *document.Document

	operation := func() error {
		var err error
		doc, err = s.confirmOnce(ctx, id)
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
	return &dto.DocumentResponse{Document: doc}, nil
}

func (s *documentService) confirmOnce(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != types.DocumentStatusDraft {
		return nil, ierr.NewError("document cannot be confirmed").
			WithHint("Only draft documents can be confirmed").
			WithReportableDetails(map[string]any{
				"document_id": id,
				"status":      doc.Status,
			}).
			Mark(ierr.ErrStateConflict)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		number, err := s.DocumentRepo.NextNumber(txCtx, doc.LocationID, doc.DocumentType)
		if err != nil {
			return err
		}
		doc.Number = &number

		inputs := stockInputsForDocument(doc)
		if _, err := s.StockRepo.ApplyBatch(txCtx, inputs); err != nil {
			return err
		}

		doc.Status = types.DocumentStatusOpen
		doc.UpdatedAt = time.Now().UTC()
		doc.UpdatedBy = types.GetUserID(txCtx)
		return s.DocumentRepo.UpdateStatus(txCtx, doc, types.DocumentStatusDraft)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("confirmed document",
		"document_id", doc.ID,
		"number", lo.FromPtr(doc.Number),
		"document_type", doc.DocumentType)
	return doc, nil
}

// VoidDocument marks a document void. Stock already applied at confirmation
// is not reversed; a compensating adjustment must be recorded explicitly.
func (s *documentService) VoidDocument(ctx context.Context, id string, reason string) (*dto.DocumentResponse, error) {
	if !types.GetRole(ctx).IsElevated() {
		return nil, ierr.NewError("voiding requires an elevated role").
			WithHint("Only owners and admins can void documents").
			Mark(ierr.ErrPermissionDenied)
	}
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanTransitionTo(types.DocumentStatusVoid) {
		return nil, ierr.NewError("document cannot be voided").
			WithHint("Paid and void documents cannot be voided").
			WithReportableDetails(map[string]any{
				"document_id": id,
				"status":      doc.Status,
			}).
			Mark(ierr.ErrStateConflict)
	}

	expected := doc.Status
	now := time.Now().UTC()
	doc.Status = types.DocumentStatusVoid
	doc.VoidedAt = &now
	if reason != "" {
		doc.Notes = reason
	}
	doc.UpdatedAt = now
	doc.UpdatedBy = types.GetUserID(ctx)

	if err := s.DocumentRepo.UpdateStatus(ctx, doc, expected); err != nil {
		return nil, err
	}

	s.Logger.Infow("voided document", "document_id", doc.ID, "previous_status", expected)
	return &dto.DocumentResponse{Document: doc}, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := s.DocumentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DocumentResponse{Document: doc}, nil
}

func (s *documentService) ListDocuments(ctx context.Context, filter *types.DocumentFilter) (*dto.ListDocumentsResponse, error) {
	if filter == nil {
		filter = &types.DocumentFilter{}
	}
	docs, err := s.DocumentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.DocumentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := lo.Map(docs, func(d *document.Document, _ int) *dto.DocumentResponse {
		return &dto.DocumentResponse{Document: d}
	})
	return &dto.ListDocumentsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// buildLineItems resolves each requested line against the catalog, snapshots
// product identity and price, and computes per line taxes and totals.
func (s *documentService) buildLineItems(ctx context.Context, documentID string, reqs []dto.CreateLineItemRequest) ([]*document.LineItem, error) {
	lines := make([]*document.LineItem, 0, len(reqs))
	for _, req := range reqs {
		prod, err := s.Catalog.Get(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		unitPrice := lo.FromPtrOr(req.UnitPrice, prod.DefaultPrice)
		base := types.RoundAmount(req.Quantity.Mul(unitPrice))

		taxes, err := s.TaxCalculator.Calculate(ctx, prod.ID, base)
		if err != nil {
			return nil, err
		}

		line := &document.LineItem{
			ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT_LINE_ITEM),
			DocumentID: documentID,
			ProductID:  prod.ID,
			Name:       prod.Name,
			SKU:        prod.SKU,
			Quantity:   req.Quantity,
			UnitPrice:  unitPrice,
			LineTaxes:  taxes,
			BaseModel:  types.GetDefaultBaseModel(ctx),
		}
		line.Compute()
		lines = append(lines, line)
	}
	return lines, nil
}

// stockInputsForDocument folds document lines into per product stock deltas
// signed by the document type. Lines for the same product collapse into one
// movement so the per (reference, product) uniqueness holds.
func stockInputsForDocument(doc *document.Document) []*stock.ApplyInput {
	sign := doc.DocumentType.StockSign()
	byProduct := map[string]*stock.ApplyInput{}
	order := []string{}
	for _, line := range doc.LineItems {
		delta := line.Quantity.Mul(sign)
		if in, ok := byProduct[line.ProductID]; ok {
			in.Delta = in.Delta.Add(delta)
			continue
		}
		movementType := types.StockMovementTypeOut
		if sign.Equal(decimal.NewFromInt(1)) {
			movementType = types.StockMovementTypeIn
		}
		byProduct[line.ProductID] = &stock.ApplyInput{
			ProductID:           line.ProductID,
			LocationID:          doc.LocationID,
			Delta:               delta,
			MovementType:        movementType,
			ReferenceDocumentID: &doc.ID,
		}
		order = append(order, line.ProductID)
	}
	inputs := make([]*stock.ApplyInput, 0, len(order))
	for _, pid := range order {
		inputs = append(inputs, byProduct[pid])
	}
	return inputs
}

func counterpartyType(t types.DocumentType) contact.ContactType {
	if t == types.DocumentTypePurchase {
		return contact.ContactTypeProvider
	}
	return contact.ContactTypeClient
}

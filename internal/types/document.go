package types

import "github.com/shopspring/decimal"

// DocumentType determines the commercial direction of a document.
// Sales documents deduct stock on confirmation, purchase documents add it.
type DocumentType string

const (
	DocumentTypeSale     DocumentType = "sale"
	DocumentTypePurchase DocumentType = "purchase"
)

func (t DocumentType) Validate() bool {
	return t == DocumentTypeSale || t == DocumentTypePurchase
}

// StockSign returns the multiplier applied to line quantities when the
// document is confirmed: sales deduct, purchases add.
func (t DocumentType) StockSign() decimal.Decimal {
	if t == DocumentTypeSale {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// NumberPrefix is the per-type prefix of the document number sequence
func (t DocumentType) NumberPrefix() string {
	if t == DocumentTypePurchase {
		return "B-"
	}
	return "F-"
}

// DocumentSource records how the document entered the system
type DocumentSource string

const (
	DocumentSourceManual DocumentSource = "manual"
	DocumentSourcePOS    DocumentSource = "pos"
)

// DocumentStatus is the lifecycle state of a commercial document.
// Transitions are monotonic: draft → open → partial → paid; void is a
// terminal administrative state reachable from draft, open and partial.
type DocumentStatus string

const (
	DocumentStatusDraft   DocumentStatus = "draft"
	DocumentStatusOpen    DocumentStatus = "open"
	DocumentStatusPartial DocumentStatus = "partial"
	DocumentStatusPaid    DocumentStatus = "paid"
	DocumentStatusVoid    DocumentStatus = "void"
)

// IsTerminal reports whether no further transitions are allowed
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusPaid || s == DocumentStatusVoid
}

// IsEditable reports whether line items and totals may still change
func (s DocumentStatus) IsEditable() bool {
	return s == DocumentStatusDraft
}

// AcceptsPayments reports whether payments may be applied
func (s DocumentStatus) AcceptsPayments() bool {
	return s == DocumentStatusOpen || s == DocumentStatusPartial
}

// CanTransitionTo reports whether the transition s → target is legal
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch target {
	case DocumentStatusOpen:
		return s == DocumentStatusDraft
	case DocumentStatusPartial:
		return s == DocumentStatusOpen
	case DocumentStatusPaid:
		return s == DocumentStatusOpen || s == DocumentStatusPartial
	case DocumentStatusVoid:
		return s == DocumentStatusDraft || s == DocumentStatusOpen || s == DocumentStatusPartial
	}
	return false
}

// PaymentMethod is the settlement method of a payment
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodOther    PaymentMethod = "other"
)

func (m PaymentMethod) Validate() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

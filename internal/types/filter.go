package types

import "time"

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 1000
)

// QueryFilter holds common pagination fields for list queries
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit"`
	Offset *int `json:"offset,omitempty" form:"offset"`
}

// GetLimit returns the limit value or the default if not set
func (f QueryFilter) GetLimit() int {
	if f.Limit == nil || *f.Limit <= 0 {
		return FilterDefaultLimit
	}
	if *f.Limit > FilterMaxLimit {
		return FilterMaxLimit
	}
	return *f.Limit
}

// GetOffset returns the offset value or zero if not set
func (f QueryFilter) GetOffset() int {
	if f.Offset == nil || *f.Offset < 0 {
		return 0
	}
	return *f.Offset
}

// DocumentFilter narrows document list queries. All fields are optional;
// tenant scoping always comes from the context, never from the filter.
type DocumentFilter struct {
	QueryFilter
	DocumentType   *DocumentType   `json:"document_type,omitempty" form:"document_type"`
	Status         *DocumentStatus `json:"status,omitempty" form:"status"`
	CounterpartyID *string         `json:"counterparty_id,omitempty" form:"counterparty_id"`
	LocationID     *string         `json:"location_id,omitempty" form:"location_id"`
	IssuedAfter    *time.Time      `json:"issued_after,omitempty" form:"issued_after"`
	IssuedBefore   *time.Time      `json:"issued_before,omitempty" form:"issued_before"`
}

// StockMovementFilter narrows movement (kardex) queries
type StockMovementFilter struct {
	QueryFilter
	ProductID  *string            `json:"product_id,omitempty" form:"product_id"`
	LocationID *string            `json:"location_id,omitempty" form:"location_id"`
	Type       *StockMovementType `json:"type,omitempty" form:"type"`
}

// PaymentFilter narrows payment list queries
type PaymentFilter struct {
	QueryFilter
	DocumentID *string        `json:"document_id,omitempty" form:"document_id"`
	Method     *PaymentMethod `json:"method,omitempty" form:"method"`
}

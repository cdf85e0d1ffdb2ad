package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex doc_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_DOCUMENT           = "doc"
	UUID_PREFIX_DOCUMENT_LINE_ITEM = "line"
	UUID_PREFIX_PAYMENT            = "pay"
	UUID_PREFIX_STOCK_MOVEMENT     = "mov"
	UUID_PREFIX_CASH_REGISTER      = "reg"
	UUID_PREFIX_CASH_MOVEMENT      = "cmv"
)

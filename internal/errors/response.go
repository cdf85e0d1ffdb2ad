package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

const jsonDetailPrefix = "__json__:"

// CodeFromErr returns the machine-readable code of the sentinel the error
// is marked with.
func CodeFromErr(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Code
	}
	for sentinel := range statusCodeMap {
		if errors.Is(err, sentinel) {
			if s, ok := sentinel.(*InternalError); ok {
				return s.Code
			}
		}
	}
	return ErrCodeSystemError
}

// HintFromErr returns the user-facing hint attached to the error, if any.
func HintFromErr(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}

// SafeDetailsFromErr extracts the structured details recorded with
// WithReportableDetails.
func SafeDetailsFromErr(err error) map[string]any {
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, detail := range payload.SafeDetails {
			if !strings.HasPrefix(detail, jsonDetailPrefix) {
				continue
			}
			raw := strings.TrimPrefix(detail, jsonDetailPrefix)
			details := map[string]any{}
			if jsonErr := json.Unmarshal([]byte(raw), &details); jsonErr == nil {
				return details
			}
		}
	}
	return nil
}

package middleware

import (
	"github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error envelope of the API.
type ErrorResponse struct {
	Success   bool           `json:"success"`
	Error     ErrorDetail    `json:"error"`
	RequestID string         `json:"request_id,omitempty"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler converts errors attached to the gin context into the error
// envelope, mapping the domain taxonomy onto HTTP status codes. Internal
// causes are logged, never surfaced.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := errors.HTTPStatusFromErr(err)
		code := errors.CodeFromErr(err)
		message := errors.HintFromErr(err)
		if message == "" {
			message = "The request could not be processed"
		}

		if status >= 500 {
			log.Errorw("request failed",
				"request_id", types.GetRequestID(c.Request.Context()),
				"status", status,
				"error", err)
		} else {
			log.Debugw("request rejected",
				"request_id", types.GetRequestID(c.Request.Context()),
				"status", status,
				"error", err)
		}

		c.AbortWithStatusJSON(status, ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Code:    code,
				Message: message,
				Details: errors.SafeDetailsFromErr(err),
			},
			RequestID: types.GetRequestID(c.Request.Context()),
		})
	}
}

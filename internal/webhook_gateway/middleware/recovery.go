package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Error code and message shared by Recovery and the handlers' 500 responses
const (
	InternalErrorCode    = "INTERNAL_SERVER_ERROR"
	InternalErrorMessage = "An internal server error occurred"
)

// Recovery turns a panic into a 500 response in the standard error envelope.
// A webhook sender treats the 500 as retryable, so the processor id of a
// failed callback is logged to find the delivery it will resend.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			correlationID := GetCorrelationID(c)
			attrs := []any{
				"error", r,
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"route", c.FullPath(),
				"method", c.Request.Method,
				"correlation_id", correlationID,
			}
			if processorID := c.Query("processor_id"); processorID != "" {
				attrs = append(attrs, "processor_id", processorID)
			}
			logger.Error("Panic recovered", attrs...)

			response := gin.H{
				"error": gin.H{
					"code":    InternalErrorCode,
					"message": InternalErrorMessage,
				},
			}
			if correlationID != "" {
				response["correlation_id"] = correlationID
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, response)
		}()

		c.Next()
	}
}

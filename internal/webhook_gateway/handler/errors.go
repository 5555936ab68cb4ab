package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/invoice-reconciler/internal/domain/processor"
)

// respondProcessorError writes a 400 for processor lookup and configuration
// failures. It reports false when err is not such a failure.
func respondProcessorError(c *gin.Context, err error) bool {
	var (
		notFound      processor.ErrProcessorNotFound
		inactive      processor.ErrProcessorInactive
		misconfigured processor.ErrMisconfigured
	)
	switch {
	case errors.As(err, &notFound):
		RespondBadRequest(c, notFound.Error())
	case errors.As(err, &inactive):
		RespondBadRequest(c, inactive.Error())
	case errors.As(err, &misconfigured):
		RespondBadRequest(c, misconfigured.Error())
	default:
		return false
	}
	return true
}
